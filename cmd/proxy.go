// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/telekom/netdiag/pkg/proxy"
)

// NewCmdProxy creates the proxy command
func NewCmdProxy() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proxy",
		Aliases: []string{"x"},
		Short:   "Run a caching HTTP forwarding proxy",
		Long: "Run an HTTP forwarding proxy. Responses to GET requests are cached\n" +
			"by their URL for the configured time.",
		Args: cobra.NoArgs,
		PreRunE: bindFlags(
			binding{key: "proxy.port", flag: "port"},
			binding{key: "proxy.cacheTTL", flag: "cache-ttl"},
			binding{key: "proxy.timeout", flag: "timeout"},
			binding{key: "proxy.address", flag: "address"},
		),
		RunE: runProxy,
	}

	cmd.Flags().IntP("port", "p", proxy.DefaultPort, "port to listen on")
	cmd.Flags().Duration("cache-ttl", proxy.DefaultCacheTTL, "how long responses are cached")
	cmd.Flags().Duration("timeout", proxy.DefaultTimeout, "timeout of client requests and upstream responses")
	cmd.Flags().String("address", proxy.DefaultAddress, "address to listen on")

	return cmd
}

func runProxy(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(ctx, nil)
	if err != nil {
		return err
	}

	p := proxy.New(cfg.Proxy)
	tel, err := startTelemetry(ctx, cfg, cmd.Name(), cmd.Root().Version, p.GetCollectors()...)
	if err != nil {
		return err
	}
	defer tel.Close(ctx)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Web Proxy starting on port: %d...\n", cfg.Proxy.Port)
	return p.Run(ctx)
}
