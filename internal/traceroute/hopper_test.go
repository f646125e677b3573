// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/netdiag/internal/helper"
	"github.com/telekom/netdiag/internal/probe"
	"github.com/telekom/netdiag/internal/resolver"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	dstAddr    = netip.MustParseAddr("192.0.2.10")
	routerAddr = netip.MustParseAddr("198.51.100.1")
)

// script returns a probe function answering the n-th call with outcomes[n].
func script(outcomes ...probe.Outcome) func(context.Context, probe.Request) (probe.Outcome, error) {
	n := 0
	return func(context.Context, probe.Request) (probe.Outcome, error) {
		o := outcomes[n%len(outcomes)]
		n++
		return o, nil
	}
}

func namer(names map[netip.Addr]string) *resolver.ResolverMock {
	return &resolver.ResolverMock{
		LookupNameFunc: func(_ context.Context, addr netip.Addr) string { return names[addr] },
	}
}

func newTestHopper(tr probe.Transport, res resolver.Resolver) *hopper {
	opts := DefaultOptions()
	opts.Retry = helper.RetryConfig{Count: 1, Delay: time.Millisecond}
	return &hopper{
		transport:  tr,
		resolver:   res,
		otelTracer: noop.NewTracerProvider().Tracer("test"),
		opts:       opts,
	}
}

func TestHopper_probeHop(t *testing.T) {
	answer := func(rtt int, src netip.Addr, terminal bool) probe.Answered {
		return probe.Answered{RTT: ms(rtt), Source: src, Terminal: terminal}
	}

	tests := []struct {
		name     string
		outcomes []probe.Outcome
		want     HopResult
		wantLoss float64
	}{
		{
			name:     "all answered by a router",
			outcomes: []probe.Outcome{answer(1, routerAddr, false), answer(2, routerAddr, false), answer(3, routerAddr, false)},
			want: HopResult{
				TTL: 4, Addr: routerAddr, Name: "router.example.net",
				Samples: []Sample{{ms(1), true}, {ms(2), true}, {ms(3), true}},
			},
			wantLoss: 0,
		},
		{
			name:     "all lost",
			outcomes: []probe.Outcome{probe.Lost{}},
			want:     HopResult{TTL: 4, Samples: []Sample{{}, {}, {}}},
			wantLoss: 1,
		},
		{
			name:     "one lost, destination reached",
			outcomes: []probe.Outcome{answer(5, dstAddr, true), probe.Lost{}, answer(7, dstAddr, true)},
			want: HopResult{
				TTL: 4, Addr: dstAddr, Name: "",
				Samples: []Sample{{ms(5), true}, {}, {ms(7), true}},
				Reached: true,
			},
			wantLoss: 1.0 / 3,
		},
		{
			name:     "most recent answer decides reached",
			outcomes: []probe.Outcome{answer(5, dstAddr, true), answer(6, routerAddr, false), probe.Lost{}},
			want: HopResult{
				TTL: 4, Addr: routerAddr, Name: "router.example.net",
				Samples: []Sample{{ms(5), true}, {ms(6), true}, {}},
				Reached: false,
			},
			wantLoss: 1.0 / 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &probe.TransportMock{ProbeFunc: script(tt.outcomes...)}
			res := namer(map[netip.Addr]string{routerAddr: "router.example.net"})
			h := newTestHopper(tr, res)

			got, err := h.probeHop(t.Context(), dstAddr, 4)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, tt.wantLoss, got.Loss(), 1e-12)

			calls := tr.ProbeCalls()
			require.Len(t, calls, DefaultQueries)
			for i, c := range calls {
				assert.Equal(t, 4, c.Req.TTL)
				assert.Equal(t, dstAddr, c.Req.Destination)
				assert.Equal(t, DefaultTimeout, c.Req.Timeout)
				assert.Equal(t, probe.ProtocolICMP, c.Req.Protocol)
				assert.Equal(t, uint16(i), c.Req.Sequence) // #nosec G115
			}

			if got.Answered() {
				assert.Len(t, res.LookupNameCalls(), 1)
			} else {
				assert.Empty(t, res.LookupNameCalls(), "unanswered hops are not resolved")
			}
		})
	}
}

func TestHopper_probeHop_sequenceContinuesAcrossHops(t *testing.T) {
	tr := &probe.TransportMock{ProbeFunc: script(probe.Lost{})}
	h := newTestHopper(tr, namer(nil))

	_, err := h.probeHop(t.Context(), dstAddr, 1)
	require.NoError(t, err)
	_, err = h.probeHop(t.Context(), dstAddr, 2)
	require.NoError(t, err)

	var seqs []uint16
	for _, c := range tr.ProbeCalls() {
		seqs = append(seqs, c.Req.Sequence)
	}
	assert.Equal(t, []uint16{0, 1, 2, 3, 4, 5}, seqs)
}

func TestHopper_probeHop_errors(t *testing.T) {
	tests := []struct {
		name      string
		probe     func(calls *int) func(context.Context, probe.Request) (probe.Outcome, error)
		wantErr   error
		wantCalls int
		wantLoss  float64
	}{
		{
			name: "permission error aborts",
			probe: func(calls *int) func(context.Context, probe.Request) (probe.Outcome, error) {
				return func(context.Context, probe.Request) (probe.Outcome, error) {
					*calls++
					return nil, fmt.Errorf("%w: operation not permitted", probe.ErrPermission)
				}
			},
			wantErr:   probe.ErrPermission,
			wantCalls: 1,
		},
		{
			name: "send failure is retried",
			probe: func(calls *int) func(context.Context, probe.Request) (probe.Outcome, error) {
				return func(context.Context, probe.Request) (probe.Outcome, error) {
					*calls++
					if *calls%2 == 1 {
						return nil, errors.New("sendto: no buffer space available")
					}
					return probe.Answered{RTT: ms(1), Source: routerAddr}, nil
				}
			},
			wantCalls: 6,
			wantLoss:  0,
		},
		{
			name: "persistent send failure counts as lost",
			probe: func(calls *int) func(context.Context, probe.Request) (probe.Outcome, error) {
				return func(context.Context, probe.Request) (probe.Outcome, error) {
					*calls++
					return nil, errors.New("sendto: network is unreachable")
				}
			},
			wantCalls: 6,
			wantLoss:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			tr := &probe.TransportMock{ProbeFunc: tt.probe(&calls)}
			h := newTestHopper(tr, namer(nil))

			hop, err := h.probeHop(t.Context(), dstAddr, 1)
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, hop.Samples, DefaultQueries)
			assert.InDelta(t, tt.wantLoss, hop.Loss(), 1e-12)
		})
	}
}

func TestHopper_probeHop_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	tr := &probe.TransportMock{ProbeFunc: func(context.Context, probe.Request) (probe.Outcome, error) {
		cancel()
		return probe.Lost{}, nil
	}}
	h := newTestHopper(tr, namer(nil))

	hop, err := h.probeHop(ctx, dstAddr, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, tr.ProbeCalls(), 1)
	assert.Len(t, hop.Samples, 1)
}
