// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"net/netip"

	"github.com/telekom/netdiag/internal/helper"
	"github.com/telekom/netdiag/internal/logger"
	"github.com/telekom/netdiag/internal/probe"
	"github.com/telekom/netdiag/internal/resolver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// hopper probes single hops of a walk.
// Probes are sent one after another and the sequence number grows across hops.
type hopper struct {
	transport  probe.Transport
	resolver   resolver.Resolver
	otelTracer trace.Tracer
	opts       Options
	seq        uint16
}

// probeHop sends opts.Queries probes with the given TTL to dst and aggregates their outcomes.
// Probe failures are recorded as lost samples. Only fatal errors are returned.
func (h *hopper) probeHop(ctx context.Context, dst netip.Addr, ttl int) (HopResult, error) {
	ctx, span := h.otelTracer.Start(ctx, "hop", trace.WithAttributes(
		attribute.Stringer("traceroute.target.address", dst),
		attribute.Int("traceroute.target.ttl", ttl),
		attribute.String("traceroute.protocol", h.opts.Protocol.String()),
	))
	defer span.End()
	log := logger.FromContext(ctx).With("ttl", ttl)
	ctx = logger.IntoContext(ctx, log)

	hop := HopResult{TTL: ttl, Samples: make([]Sample, 0, h.opts.Queries)}
	for range h.opts.Queries {
		if err := ctx.Err(); err != nil {
			return hop, wrapError(ctx, err, "hop %d interrupted", ttl)
		}

		out, err := h.send(ctx, probe.Request{
			Destination: dst,
			TTL:         ttl,
			Timeout:     h.opts.Timeout,
			Protocol:    h.opts.Protocol,
			Sequence:    h.nextSeq(),
		})
		if err != nil {
			if isFatal(err) {
				return hop, wrapError(ctx, err, "failed to probe hop %d", ttl)
			}
			log.WarnContext(ctx, "Probe could not be sent, counting it as lost", "error", err)
			span.RecordError(err)
			out = probe.Lost{}
		}

		switch o := out.(type) {
		case probe.Answered:
			hop.Samples = append(hop.Samples, Sample{RTT: o.RTT, Answered: true})
			hop.Addr = o.Source
			hop.Reached = o.Terminal
		default:
			hop.Samples = append(hop.Samples, Sample{})
		}
	}

	if hop.Answered() {
		hop.Name = h.resolver.LookupName(ctx, hop.Addr)
		span.SetAttributes(
			attribute.Stringer("traceroute.hop.address", hop.Addr),
			attribute.String("traceroute.hop.name", hop.Name),
			attribute.Bool("traceroute.hop.reached", hop.Reached),
		)
	}
	span.SetAttributes(attribute.Float64("traceroute.hop.loss", hop.Loss()))
	span.SetStatus(codes.Ok, "Hop probed")
	return hop, nil
}

// send sends one probe and retries it if it could not be sent.
// Fatal errors are never retried.
func (h *hopper) send(ctx context.Context, req probe.Request) (probe.Outcome, error) {
	var (
		out   probe.Outcome
		fatal error
	)
	err := helper.Retry(func(ctx context.Context) error {
		o, err := h.transport.Probe(ctx, req)
		if err != nil && isFatal(err) {
			fatal = err
			return nil
		}
		out = o
		return err
	}, h.opts.Retry)(ctx)
	if fatal != nil {
		return nil, fatal
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *hopper) nextSeq() uint16 {
	s := h.seq
	h.seq++
	return s
}
