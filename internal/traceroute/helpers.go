// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"

	"github.com/telekom/netdiag/internal/logger"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// wrapError wraps an error with a message and logs it.
// It also records the error in the current OpenTelemetry span.
func wrapError(ctx context.Context, err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)
	caser := cases.Title(language.English)

	text := fmt.Sprintf(msg, args...)
	log.ErrorContext(ctx, caser.String(text), "error", err)
	span.SetStatus(codes.Error, text)
	span.RecordError(err)
	return fmt.Errorf("%s: %w", text, err)
}

// logHop logs a hop in a structured format.
func logHop(ctx context.Context, hop HopResult) {
	log := logger.FromContext(ctx)
	args := []any{"ttl", hop.TTL, "loss", hop.Loss(), "reached", hop.Reached}
	if hop.Answered() {
		args = append(args, "addr", hop.Addr, "name", hop.Name)
	}
	if st, ok := hop.Stats(); ok {
		args = append(args, "min", st.Min, "avg", st.Avg, "max", st.Max)
	}
	log.DebugContext(ctx, "Hop probed", args...)
}
