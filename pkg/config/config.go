// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/telekom/netdiag/internal/ping"
	"github.com/telekom/netdiag/internal/traceroute"
	"github.com/telekom/netdiag/pkg/fileserver"
	"github.com/telekom/netdiag/pkg/proxy"
	"github.com/telekom/netdiag/pkg/report"
	"github.com/telekom/netdiag/pkg/telemetry"
)

type Config struct {
	// Output is the format results are printed in
	Output report.Format `yaml:"output" mapstructure:"output"`
	// Ping is the configuration of the ping command
	Ping ping.Options `yaml:"ping" mapstructure:"ping"`
	// Traceroute is the configuration of the traceroute commands
	Traceroute traceroute.Options `yaml:"traceroute" mapstructure:"traceroute"`
	// Web is the configuration of the file server
	Web fileserver.Config `yaml:"web" mapstructure:"web"`
	// Proxy is the configuration of the caching proxy
	Proxy proxy.Config `yaml:"proxy" mapstructure:"proxy"`
	// Telemetry is the configuration for the telemetry
	Telemetry telemetry.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// Default returns the configuration used when neither flags nor a config file set a value.
func Default() Config {
	return Config{
		Output:     report.FormatText,
		Ping:       ping.DefaultOptions(),
		Traceroute: traceroute.DefaultOptions(),
		Web:        fileserver.DefaultConfig(),
		Proxy:      proxy.DefaultConfig(),
	}
}

// HasTelemetry returns true if the config has telemetry enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// HasMetricsServer returns true if the metrics should be served
func (c *Config) HasMetricsServer() bool {
	return c.Telemetry.MetricsAddress != ""
}
