// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/netdiag/internal/logger"
	"github.com/telekom/netdiag/internal/ping"
	"github.com/telekom/netdiag/internal/probe"
	"github.com/telekom/netdiag/internal/resolver"
	"github.com/telekom/netdiag/internal/traceroute"
	"github.com/telekom/netdiag/pkg/config"
	"github.com/telekom/netdiag/pkg/report"
	"github.com/telekom/netdiag/pkg/telemetry"
)

// Constructors of the probing clients. Tests replace them with mocks.
var (
	newPingClient = func() ping.Client {
		return ping.NewClient(probe.NewTransport(probe.Config{}), resolver.New())
	}
	newTraceClient = func(paris bool) traceroute.Client {
		return traceroute.NewClient(probe.NewTransport(probe.Config{Paris: paris}), resolver.New())
	}
)

// loadConfig merges the defaults, the config file, the environment and the
// flags into one validated configuration.
func loadConfig(ctx context.Context, adjust func(cfg *config.Config) error) (*config.Config, error) {
	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if adjust != nil {
		if err := adjust(&cfg); err != nil {
			return nil, err
		}
	}

	format, err := report.ParseFormat(string(cfg.Output))
	if err != nil {
		return nil, err
	}
	cfg.Output = format

	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// session is the telemetry of one command execution.
type session struct {
	provider telemetry.Provider
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// startTelemetry initializes tracing, registers the collectors and serves
// the metrics if configured. The returned session must be closed.
func startTelemetry(ctx context.Context, cfg *config.Config, command, version string, collectors ...prometheus.Collector) (*session, error) {
	log := logger.FromContext(ctx)
	provider := telemetry.New(cfg.Telemetry, version)

	if err := provider.InitTracing(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := telemetry.RegisterBuildInfo(provider.GetRegistry(), version, command); err != nil {
		return nil, fmt.Errorf("failed to register build info: %w", err)
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &session{provider: provider, cancel: cancel}
	if err := s.register(collectors...); err != nil {
		cancel()
		return nil, err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := provider.Serve(sctx); err != nil {
			log.ErrorContext(ctx, "Metrics server failed", "error", err)
		}
	}()
	return s, nil
}

// register adds collectors to the registry of the session.
func (s *session) register(collectors ...prometheus.Collector) error {
	for _, c := range collectors {
		if err := s.provider.GetRegistry().Register(c); err != nil {
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return nil
}

// Close stops serving metrics and flushes the traces.
func (s *session) Close(ctx context.Context) {
	s.cancel()
	s.wg.Wait()
	if err := s.provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "Failed to shutdown telemetry", "error", err)
	}
}

// commandContext returns the context of cmd carrying a logger.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.IntoContext(ctx, logger.FromContext(ctx).With("command", cmd.Name()))
}
