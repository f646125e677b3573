// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// Exporter is the span exporter used to export the traces
type Exporter string

const (
	// HTTP is the otlp exporter using HTTP
	HTTP Exporter = "http"
	// GRPC is the otlp exporter using gRPC
	GRPC Exporter = "grpc"
	// STDOUT prints the traces. They are written to stderr so they never
	// mix with the tool output.
	STDOUT Exporter = "stdout"
	// NOOP discards all traces
	NOOP Exporter = "noop"
)

// ErrInvalidExporter is returned for unknown exporters.
var ErrInvalidExporter = errors.New("invalid exporter")

func (e Exporter) String() string {
	return string(e)
}

// Validate checks if the exporter is supported. An empty exporter is [NOOP].
func (e Exporter) Validate() error {
	if e == "" {
		return nil
	}
	if !slices.Contains([]Exporter{HTTP, GRPC, STDOUT, NOOP}, e) {
		return fmt.Errorf("%w: %q, must be one of %s, %s, %s or %s", ErrInvalidExporter, e, HTTP, GRPC, STDOUT, NOOP)
	}
	return nil
}

// IsExporting reports whether the exporter sends traces to a collector.
func (e Exporter) IsExporting() bool {
	return e == HTTP || e == GRPC
}

// Create creates the span exporter configured by config.
func (e Exporter) Create(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	switch e {
	case HTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(config.Url)}
		if h := config.headers(); h != nil {
			opts = append(opts, otlptracehttp.WithHeaders(h))
		}
		if !config.TLS.Enabled {
			opts = append(opts, otlptracehttp.WithInsecure())
		} else if config.TLS.CertPath != "" {
			tlsCfg, err := config.TLS.clientConfig()
			if err != nil {
				return nil, err
			}
			opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsCfg))
		}
		return otlptracehttp.New(ctx, opts...)
	case GRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpointURL(config.Url)}
		if h := config.headers(); h != nil {
			opts = append(opts, otlptracegrpc.WithHeaders(h))
		}
		if !config.TLS.Enabled {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else if config.TLS.CertPath != "" {
			tlsCfg, err := config.TLS.clientConfig()
			if err != nil {
				return nil, err
			}
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsCfg)))
		}
		return otlptracegrpc.New(ctx, opts...)
	case STDOUT:
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	default:
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))
	}
}

// headers returns the authorization headers for the collector.
func (c *Config) headers() map[string]string {
	if c.Token == "" {
		return nil
	}
	token := c.Token
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	return map[string]string{"Authorization": token}
}

// clientConfig returns a TLS configuration trusting the certificate at CertPath.
func (t TLSConfig) clientConfig() (*tls.Config, error) {
	pem, err := os.ReadFile(t.CertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificate found in %q", t.CertPath)
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
