// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package fileserver

import (
	"net"
	"strconv"
)

const (
	// DefaultPort is the port the file server listens on.
	DefaultPort = 8080
	// DefaultAddress is the address the file server listens on.
	DefaultAddress = "localhost"
	// DefaultRoot is the directory served.
	DefaultRoot = "."
)

// Config is the configuration of the file server.
type Config struct {
	// Address is the host or IP to listen on.
	Address string `yaml:"address" mapstructure:"address"`
	// Port is the TCP port to listen on.
	Port int `yaml:"port" mapstructure:"port"`
	// Root is the directory files are served from.
	Root string `yaml:"root" mapstructure:"root"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Address: DefaultAddress, Port: DefaultPort, Root: DefaultRoot}
}

// ListenAddress returns the host:port to listen on.
func (c Config) ListenAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}
