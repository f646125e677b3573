// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/telekom/netdiag/pkg/fileserver"
)

// NewCmdWeb creates the web command
func NewCmdWeb() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "web",
		Aliases: []string{"w"},
		Short:   "Serve the files of a directory over HTTP",
		Args:    cobra.NoArgs,
		PreRunE: bindFlags(
			binding{key: "web.port", flag: "port"},
			binding{key: "web.root", flag: "root"},
			binding{key: "web.address", flag: "address"},
		),
		RunE: runWeb,
	}

	cmd.Flags().IntP("port", "p", fileserver.DefaultPort, "port to listen on")
	cmd.Flags().String("root", fileserver.DefaultRoot, "directory to serve")
	cmd.Flags().String("address", fileserver.DefaultAddress, "address to listen on")

	return cmd
}

func runWeb(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(ctx, nil)
	if err != nil {
		return err
	}

	tel, err := startTelemetry(ctx, cfg, cmd.Name(), cmd.Root().Version)
	if err != nil {
		return err
	}
	defer tel.Close(ctx)

	// The file server exposes the metrics of the session on /metrics.
	srv, err := fileserver.New(cfg.Web, tel.provider.Handler())
	if err != nil {
		return err
	}
	if err := tel.register(srv.GetCollectors()...); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Web Server starting on port: %d...\n", cfg.Web.Port)
	return srv.Run(ctx)
}
