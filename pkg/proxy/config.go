// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"net"
	"strconv"
	"time"

	"github.com/telekom/netdiag/internal/helper"
)

const (
	// DefaultPort is the port the proxy listens on.
	DefaultPort = 8000
	// DefaultAddress is the address the proxy listens on.
	DefaultAddress = "localhost"
	// DefaultCacheTTL is how long upstream responses are cached.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultTimeout bounds reading the request and the upstream response.
	DefaultTimeout = 5 * time.Second
)

// Config is the configuration of the proxy.
type Config struct {
	// Address is the host or IP to listen on.
	Address string `yaml:"address" mapstructure:"address"`
	// Port is the TCP port to listen on.
	Port int `yaml:"port" mapstructure:"port"`
	// CacheTTL is how long GET responses are served from the cache.
	CacheTTL time.Duration `yaml:"cacheTTL" mapstructure:"cacheTTL"`
	// Timeout bounds the client request read, the upstream dial and the upstream response.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Retry configures how upstream dials are retried.
	Retry helper.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Address:  DefaultAddress,
		Port:     DefaultPort,
		CacheTTL: DefaultCacheTTL,
		Timeout:  DefaultTimeout,
		Retry:    helper.RetryConfig{Count: 2, Delay: 100 * time.Millisecond},
	}
}

// ListenAddress returns the host:port to listen on.
func (c Config) ListenAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}
