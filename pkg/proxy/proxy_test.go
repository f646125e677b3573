// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/netdiag/internal/helper"
)

// startProxy serves p on a loopback listener until the test ends.
func startProxy(t *testing.T, p *Proxy) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx, l) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("proxy did not shut down")
		}
	})
	return l.Addr().String()
}

// send writes raw to the proxy and returns everything it answers.
func send(t *testing.T, proxyAddr, raw string) string {
	t.Helper()
	conn, err := net.Dial("tcp", proxyAddr)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	_, err = io.WriteString(conn, raw)
	require.NoError(t, err)
	b, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(b)
}

// body parses a relayed HTTP response and returns its body.
func body(t *testing.T, raw string) string {
	t.Helper()
	resp, err := http.ReadResponse(bufio.NewReader(strings.NewReader(raw)), nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = 2 * time.Second
	cfg.Retry = helper.RetryConfig{}
	return cfg
}

func newUpstream(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		_, _ = fmt.Fprintf(w, "%s %s #%d", r.Method, r.URL.Path, n)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestProxy_Caching(t *testing.T) {
	upstream, hits := newUpstream(t)
	host := upstream.Listener.Addr().String()

	tests := []struct {
		name     string
		method   string
		path     string
		wantBody []string
		wantHits int32
	}{
		{
			name:     "get is served from cache",
			method:   http.MethodGet,
			path:     "/index.html",
			wantBody: []string{"GET /index.html #1", "GET /index.html #1"},
			wantHits: 1,
		},
		{
			name:     "post is not cached",
			method:   http.MethodPost,
			path:     "/form",
			wantBody: []string{"POST /form #1", "POST /form #2"},
			wantHits: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits.Store(0)
			p := New(testConfig())
			addr := startProxy(t, p)

			raw := fmt.Sprintf("%s http://%s%s HTTP/1.1\r\nHost: %s\r\nContent-Length: 0\r\n\r\n", tt.method, host, tt.path, host)
			for _, want := range tt.wantBody {
				assert.Equal(t, want, body(t, send(t, addr, raw)))
			}
			assert.Equal(t, tt.wantHits, hits.Load())
		})
	}
}

func TestProxy_CacheMetrics(t *testing.T) {
	upstream, _ := newUpstream(t)
	host := upstream.Listener.Addr().String()
	p := New(testConfig())
	addr := startProxy(t, p)

	for _, path := range []string{"/a", "/a", "/b", "/a"} {
		send(t, addr, fmt.Sprintf("GET http://%s%s HTTP/1.0\r\n\r\n", host, path))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(p.metrics.cache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(p.metrics.cache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(p.metrics.upstreamErrors), 0)
	assert.Len(t, p.GetCollectors(), 2)
}

func TestProxy_CacheExpiry(t *testing.T) {
	upstream, hits := newUpstream(t)
	host := upstream.Listener.Addr().String()
	cfg := testConfig()
	cfg.CacheTTL = 50 * time.Millisecond
	addr := startProxy(t, New(cfg))

	raw := fmt.Sprintf("GET http://%s/page HTTP/1.0\r\n\r\n", host)
	assert.Equal(t, "GET /page #1", body(t, send(t, addr, raw)))
	assert.Equal(t, "GET /page #1", body(t, send(t, addr, raw)))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "GET /page #2", body(t, send(t, addr, raw)))
	assert.Equal(t, int32(2), hits.Load())
}

func TestProxy_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "garbage", raw: "garbage\r\n\r\n"},
		{name: "origin form", raw: "GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"},
		{name: "unsupported scheme", raw: "GET ftp://example.com/file HTTP/1.1\r\nHost: example.com\r\n\r\n"},
	}

	p := New(testConfig())
	addr := startProxy(t, p)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, responseBadRequest, send(t, addr, tt.raw))
		})
	}
	assert.InDelta(t, 0, testutil.ToFloat64(p.metrics.upstreamErrors), 0)
}

func TestProxy_BadGateway(t *testing.T) {
	// A port that was just released refuses connections.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closed := l.Addr().String()
	require.NoError(t, l.Close())

	cfg := testConfig()
	cfg.Retry = helper.RetryConfig{Count: 1, Delay: time.Millisecond}
	p := New(cfg)

	var dials atomic.Int32
	dial := p.dial
	p.dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		dials.Add(1)
		return dial(ctx, network, address)
	}
	addr := startProxy(t, p)

	got := send(t, addr, fmt.Sprintf("GET http://%s/ HTTP/1.0\r\n\r\n", closed))
	assert.Equal(t, responseBadGateway, got)
	assert.Equal(t, int32(2), dials.Load(), "dial must be retried once")
	assert.InDelta(t, 1, testutil.ToFloat64(p.metrics.upstreamErrors), 0)
	assert.Equal(t, 0, p.cache.Len())
}

func TestProxy_UpstreamKeepsConnectionOpen(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	const response = "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"
	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer func() { _ = c.Close() }()
		_, _ = http.ReadRequest(bufio.NewReader(c))
		_, _ = io.WriteString(c, response)
		// Hold the connection until the proxy gives up reading.
		_, _ = io.Copy(io.Discard, c)
	}()

	cfg := testConfig()
	cfg.Timeout = 200 * time.Millisecond
	addr := startProxy(t, New(cfg))

	got := send(t, addr, fmt.Sprintf("GET http://%s/ HTTP/1.0\r\n\r\n", l.Addr().String()))
	assert.Equal(t, response, got)
}

func TestReadRequest(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantErr  bool
		wantAddr string
		wantURL  string
	}{
		{
			name:     "default port",
			raw:      "GET http://example.com/a?b=c HTTP/1.1\r\nHost: example.com\r\nProxy-Connection: keep-alive\r\n\r\n",
			wantAddr: "example.com:80",
			wantURL:  "http://example.com/a?b=c",
		},
		{
			name:     "explicit port",
			raw:      "GET http://example.com:8080/ HTTP/1.0\r\n\r\n",
			wantAddr: "example.com:8080",
			wantURL:  "http://example.com:8080/",
		},
		{name: "empty", raw: "\r\n", wantErr: true},
		{name: "no host", raw: "GET http:///path HTTP/1.1\r\n\r\n", wantErr: true},
		{name: "connect", raw: "CONNECT example.com:443 HTTP/1.1\r\nHost: example.com:443\r\n\r\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := readRequest(bufio.NewReader(strings.NewReader(tt.raw)))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, upstreamAddress(req))
			assert.Equal(t, tt.wantURL, req.URL.String())
			assert.True(t, req.Close)
			assert.Empty(t, req.Header.Get("Proxy-Connection"))
		})
	}
}

func TestConfig_ListenAddress(t *testing.T) {
	assert.Equal(t, "localhost:8000", DefaultConfig().ListenAddress())
}
