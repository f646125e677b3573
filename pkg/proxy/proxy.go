// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package proxy implements a caching HTTP forwarding proxy on plain TCP.
//
// Each client connection carries one absolute-form request. The request is
// forwarded to the origin server, the whole response is read until the server
// closes the connection and relayed to the client. Responses to GET requests
// are cached by their absolute URL.
package proxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/netdiag/internal/helper"
	"github.com/telekom/netdiag/internal/logger"
)

// cacheCapacity bounds the number of cached responses.
const cacheCapacity = 1024

// Proxy is a caching forwarding proxy.
type Proxy struct {
	cfg     Config
	cache   *ttlcache.Cache[string, []byte]
	metrics metrics
	// dial opens the upstream connection
	dial func(ctx context.Context, network, address string) (net.Conn, error)
}

// New creates a new [Proxy].
func New(cfg Config) *Proxy {
	d := &net.Dialer{Timeout: cfg.Timeout}
	return &Proxy{
		cfg: cfg,
		cache: ttlcache.New(
			ttlcache.WithTTL[string, []byte](cfg.CacheTTL),
			ttlcache.WithCapacity[string, []byte](cacheCapacity),
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
		metrics: newMetrics(),
		dial:    d.DialContext,
	}
}

// GetCollectors returns the metric collectors of the proxy.
func (p *Proxy) GetCollectors() []prometheus.Collector {
	return p.metrics.GetCollectors()
}

// Run listens on the configured address and serves until ctx is done.
func (p *Proxy) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", p.cfg.ListenAddress())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", p.cfg.ListenAddress(), err)
	}
	return p.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done.
// Every connection is handled in its own goroutine. Serve waits for
// running handlers before it returns.
func (p *Proxy) Serve(ctx context.Context, l net.Listener) error {
	log := logger.FromContext(ctx).With("address", l.Addr().String())
	log.InfoContext(ctx, "Proxy started")

	go p.cache.Start()
	defer p.cache.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	stop := context.AfterFunc(ctx, func() { _ = l.Close() })
	defer stop()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.InfoContext(ctx, "Shutting down proxy")
				return nil
			}
			_ = l.Close()
			return fmt.Errorf("failed to accept connection: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx := logger.IntoContext(ctx, log.With("client", conn.RemoteAddr().String()))
			p.handle(cctx, conn)
		}()
	}
}

// handle serves the single request of conn and closes it.
func (p *Proxy) handle(ctx context.Context, conn net.Conn) {
	log := logger.FromContext(ctx)
	defer func() { _ = conn.Close() }()

	_ = conn.SetDeadline(time.Now().Add(p.cfg.Timeout))
	req, err := readRequest(bufio.NewReader(conn))
	if err != nil {
		log.DebugContext(ctx, "Rejecting request", "error", err)
		_, _ = io.WriteString(conn, responseBadRequest)
		return
	}
	key := req.URL.String()
	log = log.With("method", req.Method, "url", key)

	resp, err := p.response(logger.IntoContext(ctx, log), req)
	if err != nil {
		p.metrics.upstreamErrors.Inc()
		log.WarnContext(ctx, "Upstream request failed", "error", err)
		_ = conn.SetWriteDeadline(time.Now().Add(p.cfg.Timeout))
		_, _ = io.WriteString(conn, responseBadGateway)
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(p.cfg.Timeout))
	if _, err := conn.Write(resp); err != nil {
		log.DebugContext(ctx, "Failed to relay response", "error", err)
	}
}

// response returns the response to req, either from the cache or from upstream.
func (p *Proxy) response(ctx context.Context, req *http.Request) ([]byte, error) {
	log := logger.FromContext(ctx)
	key := req.URL.String()
	cacheable := req.Method == http.MethodGet

	if cacheable {
		if item := p.cache.Get(key); item != nil {
			p.metrics.cache.WithLabelValues("hit").Inc()
			log.DebugContext(ctx, "Serving cached response")
			return item.Value(), nil
		}
		p.metrics.cache.WithLabelValues("miss").Inc()
	}

	resp, err := p.forward(ctx, req)
	if err != nil {
		return nil, err
	}
	if cacheable {
		p.cache.Set(key, resp, ttlcache.DefaultTTL)
	}
	return resp, nil
}

// forward sends req to its origin server and reads the response until the
// server closes the connection or the timeout elapses.
func (p *Proxy) forward(ctx context.Context, req *http.Request) ([]byte, error) {
	addr := upstreamAddress(req)

	var upstream net.Conn
	dial := func(ctx context.Context) error {
		c, err := p.dial(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		upstream = c
		return nil
	}
	if err := helper.Retry(dial, p.cfg.Retry)(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %w", ErrUpstream, addr, err)
	}
	defer func() { _ = upstream.Close() }()

	_ = upstream.SetDeadline(time.Now().Add(p.cfg.Timeout))
	if err := req.Write(upstream); err != nil {
		return nil, fmt.Errorf("%w: failed to write request to %s: %w", ErrUpstream, addr, err)
	}

	resp, err := io.ReadAll(upstream)
	if err != nil {
		var netErr net.Error
		if !errors.As(err, &netErr) || !netErr.Timeout() || len(resp) == 0 {
			return nil, fmt.Errorf("%w: failed to read response from %s: %w", ErrUpstream, addr, err)
		}
		logger.FromContext(ctx).DebugContext(ctx, "Upstream kept connection open, relaying partial response", "bytes", len(resp))
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: empty response from %s", ErrUpstream, addr)
	}
	return resp, nil
}

// readRequest reads an absolute-form HTTP request and prepares it for forwarding.
func readRequest(r *bufio.Reader) (*http.Request, error) {
	req, err := http.ReadRequest(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if !req.URL.IsAbs() || req.URL.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute URL", ErrBadRequest, req.RequestURI)
	}
	if req.URL.Scheme != "http" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrBadRequest, req.URL.Scheme)
	}

	// The upstream closes the connection after its response.
	req.Close = true
	req.Header.Del("Proxy-Connection")
	req.Header.Del("Proxy-Authorization")
	return req, nil
}

// upstreamAddress returns the host:port of the origin server. The port defaults to 80.
func upstreamAddress(req *http.Request) string {
	port := req.URL.Port()
	if port == "" {
		port = "80"
	}
	return net.JoinHostPort(req.URL.Hostname(), port)
}
