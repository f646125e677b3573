// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/telekom/netdiag/internal/logger"
	"github.com/telekom/netdiag/pkg/report"
)

const maxPort = 65535

// Validate validates the startup config
func (c *Config) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)

	if _, fErr := report.ParseFormat(string(c.Output)); fErr != nil {
		log.ErrorContext(ctx, "The output format is invalid", "output", c.Output)
		err = errors.Join(err, fErr)
	}

	if vErr := c.Ping.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The ping configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if vErr := c.Traceroute.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The traceroute configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if vErr := c.ValidateWeb(ctx); vErr != nil {
		err = errors.Join(err, vErr)
	}

	if vErr := c.ValidateProxy(ctx); vErr != nil {
		err = errors.Join(err, vErr)
	}

	if c.HasTelemetry() || c.HasMetricsServer() {
		if vErr := c.Telemetry.Validate(ctx); vErr != nil {
			log.ErrorContext(ctx, "The telemetry configuration is invalid")
			err = errors.Join(err, vErr)
		}
	}

	if err != nil {
		return fmt.Errorf("validation of configuration failed: %w", err)
	}
	return nil
}

// ValidateWeb validates the file server section
func (c *Config) ValidateWeb(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)

	if !validPort(c.Web.Port) {
		log.ErrorContext(ctx, "The web port is out of range", "port", c.Web.Port)
		err = errors.Join(err, ErrInvalidConfig{Section: "web", Field: "port", Reason: fmt.Sprintf("must be between 1 and %d, got %d", maxPort, c.Web.Port)})
	}

	if c.Web.Root == "" {
		log.ErrorContext(ctx, "The web root cannot be empty")
		err = errors.Join(err, ErrInvalidConfig{Section: "web", Field: "root", Reason: "must not be empty"})
	} else if info, sErr := os.Stat(c.Web.Root); sErr != nil || !info.IsDir() {
		log.ErrorContext(ctx, "The web root is not a directory", "root", c.Web.Root)
		err = errors.Join(err, ErrInvalidConfig{Section: "web", Field: "root", Reason: fmt.Sprintf("%q is not a directory", c.Web.Root)})
	}
	return err
}

// ValidateProxy validates the proxy section
func (c *Config) ValidateProxy(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)

	if !validPort(c.Proxy.Port) {
		log.ErrorContext(ctx, "The proxy port is out of range", "port", c.Proxy.Port)
		err = errors.Join(err, ErrInvalidConfig{Section: "proxy", Field: "port", Reason: fmt.Sprintf("must be between 1 and %d, got %d", maxPort, c.Proxy.Port)})
	}
	if c.Proxy.CacheTTL <= 0 {
		log.ErrorContext(ctx, "The proxy cache ttl should be above 0", "cacheTTL", c.Proxy.CacheTTL)
		err = errors.Join(err, ErrInvalidConfig{Section: "proxy", Field: "cacheTTL", Reason: "must be positive"})
	}
	if c.Proxy.Timeout <= 0 {
		log.ErrorContext(ctx, "The proxy timeout should be above 0", "timeout", c.Proxy.Timeout)
		err = errors.Join(err, ErrInvalidConfig{Section: "proxy", Field: "timeout", Reason: "must be positive"})
	}
	if c.Proxy.Retry.Count < 0 || c.Proxy.Retry.Count >= 5 {
		log.ErrorContext(ctx, "The amount of proxy retries should be between 0 and 4", "retryCount", c.Proxy.Retry.Count)
		err = errors.Join(err, ErrInvalidConfig{Section: "proxy", Field: "retry.count", Reason: "must be between 0 and 4"})
	}
	return err
}

func validPort(p int) bool {
	return p > 0 && p <= maxPort
}
