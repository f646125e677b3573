// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/netdiag/internal/probe"
	"github.com/telekom/netdiag/internal/resolver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Client = (*walker)(nil)

// ReportFunc is called with every hop as soon as it was probed.
type ReportFunc func(HopResult)

// Client is able to walk the path to a target.
//
//go:generate go tool moq -out client_moq.go . Client
type Client interface {
	// Run probes the path to target with increasing TTLs, starting at 1.
	// It stops when the destination answered or opts.MaxTTL was probed.
	// Every hop is passed to report before the next one is probed.
	Run(ctx context.Context, target string, opts Options, report ReportFunc) (Result, error)
	// GetCollectors returns the metric collectors of the client.
	GetCollectors() []prometheus.Collector
}

type walker struct {
	transport probe.Transport
	resolver  resolver.Resolver
	metrics   metrics
}

// NewClient returns a [Client] sending its probes with the given transport.
func NewClient(t probe.Transport, r resolver.Resolver) Client {
	return &walker{
		transport: t,
		resolver:  r,
		metrics:   newMetrics(),
	}
}

func (w *walker) GetCollectors() []prometheus.Collector {
	return w.metrics.GetCollectors()
}

func (w *walker) Run(ctx context.Context, target string, opts Options, report ReportFunc) (Result, error) {
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("traceroute")
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		tracer = otel.Tracer("traceroute")
	}
	ctx, span := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("traceroute.target", target),
		attribute.String("traceroute.options.protocol", opts.Protocol.String()),
		attribute.Int("traceroute.options.max_hops", opts.MaxTTL),
		attribute.Int("traceroute.options.queries", opts.Queries),
		attribute.Stringer("traceroute.options.timeout", opts.Timeout),
		attribute.Bool("traceroute.options.paris", opts.Paris),
	))
	defer span.End()

	res := Result{Target: target}
	if err := opts.Validate(); err != nil {
		return res, wrapError(ctx, err, "invalid options")
	}

	dst, err := w.resolver.LookupTarget(ctx, target)
	if err != nil {
		return res, wrapError(ctx, err, "failed to resolve target %s", target)
	}
	res.Addr = dst
	span.SetAttributes(attribute.Stringer("traceroute.target.address", dst))

	h := &hopper{
		transport:  w.transport,
		resolver:   w.resolver,
		otelTracer: tracer,
		opts:       opts,
	}

	for ttl := 1; ttl <= opts.MaxTTL; ttl++ {
		hop, err := h.probeHop(ctx, dst, ttl)
		if err != nil {
			w.metrics.set(target, res)
			return res, err
		}

		res.Hops = append(res.Hops, hop)
		w.metrics.observe(target, hop)
		logHop(ctx, hop)
		if report != nil {
			report(hop)
		}

		if hop.Reached {
			res.Reached = true
			break
		}
	}

	w.metrics.set(target, res)
	span.SetAttributes(
		attribute.Int("traceroute.result.hops", len(res.Hops)),
		attribute.Bool("traceroute.result.reached", res.Reached),
	)
	span.SetStatus(codes.Ok, "Walk finished")
	return res, nil
}
