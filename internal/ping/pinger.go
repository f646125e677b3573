// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package ping sends ICMP echo requests to a destination at a steady
// interval and reports every reply as soon as it arrives.
package ping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/netdiag/internal/logger"
	"github.com/telekom/netdiag/internal/probe"
	"github.com/telekom/netdiag/internal/resolver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Client = (*pinger)(nil)

// ReportFunc is called with the outcome of every echo request.
type ReportFunc func(Reply)

// Client pings a target.
//
//go:generate go tool moq -out client_moq.go . Client
type Client interface {
	// Run sends echo requests to target until opts.Count requests were sent
	// or ctx is done. Cancelling ctx ends the run without an error, the
	// statistics so far are returned.
	Run(ctx context.Context, target string, opts Options, report ReportFunc) (Statistics, error)
	// GetCollectors returns the metric collectors of the client.
	GetCollectors() []prometheus.Collector
}

type pinger struct {
	transport probe.Transport
	resolver  resolver.Resolver
	metrics   metrics
}

// NewClient returns a [Client] sending its echo requests with the given transport.
func NewClient(t probe.Transport, r resolver.Resolver) Client {
	return &pinger{
		transport: t,
		resolver:  r,
		metrics:   newMetrics(),
	}
}

func (p *pinger) GetCollectors() []prometheus.Collector {
	return p.metrics.GetCollectors()
}

func (p *pinger) Run(ctx context.Context, target string, opts Options, report ReportFunc) (Statistics, error) {
	ctx, span := otel.Tracer("ping").Start(ctx, "Run", trace.WithAttributes(
		attribute.String("ping.target", target),
		attribute.Int("ping.options.count", opts.Count),
		attribute.Stringer("ping.options.timeout", opts.Timeout),
		attribute.Stringer("ping.options.interval", opts.Interval),
	))
	defer span.End()
	log := logger.FromContext(ctx).With("target", target)

	stats := Statistics{Target: target}
	if err := opts.Validate(); err != nil {
		return stats, p.fail(ctx, err, "invalid options")
	}

	dst, err := p.resolver.LookupTarget(ctx, target)
	if err != nil {
		return stats, p.fail(ctx, err, fmt.Sprintf("failed to resolve target %s", target))
	}
	stats.Addr = dst

	timer := time.NewTimer(0)
	defer timer.Stop()
	for seq := 0; opts.Count == 0 || seq < opts.Count; seq++ {
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		if ctx.Err() != nil {
			log.DebugContext(ctx, "Ping interrupted", "sent", stats.Transmitted)
			return p.finish(span, stats), nil
		}
		timer.Reset(opts.Interval)

		out, err := p.transport.Probe(ctx, probe.Request{
			Destination: dst,
			TTL:         opts.TTL,
			Timeout:     opts.Timeout,
			Protocol:    probe.ProtocolICMP,
			Sequence:    uint16(seq), // #nosec G115 // sequence numbers wrap
		})
		if err != nil {
			if errors.Is(err, probe.ErrPermission) {
				return stats, p.fail(ctx, err, "failed to send echo request")
			}
			log.WarnContext(ctx, "Echo request could not be sent, counting it as lost", "seq", seq, "error", err)
			out = probe.Lost{}
		}

		r := Reply{Seq: seq}
		if a, ok := out.(probe.Answered); ok {
			r.Addr = a.Source
			r.TTL = a.TTL
			r.Size = a.Size
			if a.EchoReply() {
				r.Answered = true
				r.RTT = a.RTT
				r.Name = p.resolver.LookupName(ctx, a.Source)
			} else {
				r.Error = describeError(a.Type, a.Code)
				log.DebugContext(ctx, "Echo request drew an ICMP error", "seq", seq, "source", a.Source, "type", a.Type, "code", a.Code)
			}
		}

		stats.add(r)
		p.metrics.observe(target, r)
		log.DebugContext(ctx, "Echo request finished", "seq", seq, "answered", r.Answered, "rtt", r.RTT, "loss", stats.Loss())
		if report != nil {
			report(r)
		}
	}

	return p.finish(span, stats), nil
}

// finish records the statistics on the span.
func (p *pinger) finish(span trace.Span, stats Statistics) Statistics {
	span.SetAttributes(
		attribute.Int("ping.result.transmitted", stats.Transmitted),
		attribute.Int("ping.result.received", stats.Received),
		attribute.Float64("ping.result.loss", stats.Loss()),
	)
	span.SetStatus(codes.Ok, "Ping finished")
	return stats
}

// fail logs err and records it on the current span.
func (p *pinger) fail(ctx context.Context, err error, msg string) error {
	span := trace.SpanFromContext(ctx)
	logger.FromContext(ctx).ErrorContext(ctx, msg, "error", err)
	span.SetStatus(codes.Error, msg)
	span.RecordError(err)
	return fmt.Errorf("%s: %w", msg, err)
}
