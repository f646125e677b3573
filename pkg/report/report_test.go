// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/json"
	"net/netip"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/netdiag/internal/ping"
	"github.com/telekom/netdiag/internal/traceroute"
	"gopkg.in/yaml.v3"
)

var (
	dstAddr    = netip.MustParseAddr("192.0.2.10")
	routerAddr = netip.MustParseAddr("198.51.100.1")
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "text", want: FormatText},
		{in: "", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: " yaml ", want: FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPingLine(t *testing.T) {
	tests := []struct {
		name  string
		reply ping.Reply
		want  string
	}{
		{
			name:  "with host name",
			reply: ping.Reply{Seq: 0, Answered: true, RTT: 12500 * time.Microsecond, Addr: dstAddr, Name: "target.example", TTL: 57, Size: 8},
			want:  "8 bytes from target.example (192.0.2.10): ttl=57 time=12.50 ms",
		},
		{
			name:  "without host name",
			reply: ping.Reply{Seq: 1, Answered: true, RTT: 3 * time.Millisecond, Addr: dstAddr, TTL: 120, Size: 64},
			want:  "64 bytes from 192.0.2.10: ttl=120 time=3.00 ms",
		},
		{
			name:  "timeout",
			reply: ping.Reply{Seq: 7},
			want:  "Request timeout for icmp_seq 7",
		},
		{
			name:  "icmp error",
			reply: ping.Reply{Seq: 2, Addr: routerAddr, Error: "Destination Host Unreachable"},
			want:  "From 198.51.100.1 icmp_seq=2 Destination Host Unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pingLine(tt.reply))
		})
	}
}

func TestHopLine(t *testing.T) {
	tests := []struct {
		name string
		hop  traceroute.HopResult
		want string
	}{
		{
			name: "named hop with one lost sample",
			hop: traceroute.HopResult{
				TTL: 4, Addr: routerAddr, Name: "router.example.net",
				Samples: []traceroute.Sample{{RTT: 1234400 * time.Nanosecond, Answered: true}, {}, {RTT: 3 * time.Millisecond, Answered: true}},
			},
			want: "4 router.example.net (198.51.100.1) 1.234 ms  * 3.0 ms",
		},
		{
			name: "unknown host name shows the address once",
			hop: traceroute.HopResult{
				TTL: 2, Addr: routerAddr,
				Samples: []traceroute.Sample{{RTT: 10500 * time.Microsecond, Answered: true}},
			},
			want: "2 198.51.100.1 10.5 ms",
		},
		{
			name: "no answer",
			hop:  traceroute.HopResult{TTL: 7, Samples: []traceroute.Sample{{}, {}, {}}},
			want: "7 * * *",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hopLine(tt.hop))
		})
	}
}

func TestWriter_Text(t *testing.T) {
	t.Run("ping", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf, FormatText)

		require.NoError(t, w.Header("Ping", "target.example"))
		replies := []ping.Reply{
			{Seq: 0, Answered: true, RTT: 2 * time.Millisecond, Addr: dstAddr, TTL: 57, Size: 8},
			{Seq: 1},
			{Seq: 2, Answered: true, RTT: 4 * time.Millisecond, Addr: dstAddr, TTL: 57, Size: 8},
		}
		stats := ping.Statistics{Target: "target.example", Addr: dstAddr}
		for _, r := range replies {
			require.NoError(t, w.PingReply(r))
			stats.Transmitted++
			if r.Answered {
				stats.Received++
				stats.RTTs = append(stats.RTTs, r.RTT)
			}
		}
		require.NoError(t, w.PingSummary(stats))

		want := "Ping to: target.example...\n" +
			"8 bytes from 192.0.2.10: ttl=57 time=2.00 ms\n" +
			"Request timeout for icmp_seq 1\n" +
			"8 bytes from 192.0.2.10: ttl=57 time=4.00 ms\n" +
			"33.33% packet loss\n" +
			"rtt min/avg/max = 2.00/3.00/4.00 ms\n"
		if diff := cmp.Diff(want, buf.String()); diff != "" {
			t.Errorf("unexpected output (-want +got):\n%s", diff)
		}
	})

	t.Run("all lost ping has no rtt line", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf, FormatText)
		require.NoError(t, w.PingSummary(ping.Statistics{Transmitted: 4}))
		assert.Equal(t, "100.00% packet loss\n", buf.String())
	})

	t.Run("traceroute", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf, FormatText)

		require.NoError(t, w.Header("Traceroute", "target.example"))
		require.NoError(t, w.Hop(traceroute.HopResult{TTL: 1, Samples: []traceroute.Sample{{}, {}, {}}}))
		require.NoError(t, w.Hop(traceroute.HopResult{
			TTL: 2, Addr: routerAddr, Name: "router.example.net",
			Samples: []traceroute.Sample{{RTT: 1234400 * time.Nanosecond, Answered: true}, {}, {RTT: 3 * time.Millisecond, Answered: true}},
		}))
		require.NoError(t, w.TraceSummary(traceroute.Result{}))

		want := "Traceroute to: target.example...\n" +
			"1 * * *\n" +
			"100.00% packet loss\n" +
			"2 router.example.net (198.51.100.1) 1.234 ms  * 3.0 ms\n" +
			"33.33% packet loss\n" +
			"rtt min/avg/max = 1.23/2.12/3.00 ms\n"
		if diff := cmp.Diff(want, buf.String()); diff != "" {
			t.Errorf("unexpected output (-want +got):\n%s", diff)
		}
	})
}

func TestWriter_Structured(t *testing.T) {
	result := traceroute.Result{
		Target:  "target.example",
		Addr:    dstAddr,
		Reached: true,
		Hops: []traceroute.HopResult{
			{TTL: 1, Samples: []traceroute.Sample{{}, {}}},
			{TTL: 2, Addr: dstAddr, Reached: true, Samples: []traceroute.Sample{{RTT: 5 * time.Millisecond, Answered: true}, {}}},
		},
	}

	tests := []struct {
		name   string
		format Format
		decode func([]byte, any) error
	}{
		{name: "json", format: FormatJSON, decode: json.Unmarshal},
		{name: "yaml", format: FormatYAML, decode: yaml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.name+" traceroute", func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, tt.format)
			require.NoError(t, w.Header("Traceroute", result.Target))
			for _, h := range result.Hops {
				require.NoError(t, w.Hop(h))
			}
			assert.Zero(t, buf.Len(), "structured output is written once the walk finished")
			require.NoError(t, w.TraceSummary(result))

			var got traceDocument
			require.NoError(t, tt.decode(buf.Bytes(), &got))

			five := 5.0
			want := traceDocument{
				Target:  "target.example",
				Addr:    "192.0.2.10",
				Reached: true,
				Hops: []hopDocument{
					{TTL: 1, Samples: []*float64{nil, nil}, LossPercent: 100},
					{
						TTL: 2, Addr: "192.0.2.10", Reached: true,
						Samples: []*float64{&five, nil}, LossPercent: 50,
						RTT: &rttDocument{Min: 5, Avg: 5, Max: 5},
					},
				},
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("unexpected document (-want +got):\n%s", diff)
			}
		})

		t.Run(tt.name+" ping", func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, tt.format)
			require.NoError(t, w.PingReply(ping.Reply{Seq: 0}))
			require.NoError(t, w.PingReply(ping.Reply{Seq: 1, Addr: routerAddr, Error: "Destination Host Unreachable"}))
			require.NoError(t, w.PingSummary(ping.Statistics{Target: "target.example", Addr: dstAddr, Transmitted: 2}))

			var got pingDocument
			require.NoError(t, tt.decode(buf.Bytes(), &got))
			assert.Equal(t, "target.example", got.Target)
			assert.Equal(t, 2, got.Transmitted)
			assert.InDelta(t, 100, got.LossPercent, 0)
			assert.Nil(t, got.RTT, "no rtt statistics without answers")
			require.Len(t, got.Replies, 2)
			assert.Equal(t, replyDocument{Seq: 1, Addr: "198.51.100.1", Error: "Destination Host Unreachable"}, got.Replies[1])
		})
	}
}
