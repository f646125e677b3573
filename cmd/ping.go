// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/telekom/netdiag/internal/logger"
	"github.com/telekom/netdiag/internal/ping"
	"github.com/telekom/netdiag/pkg/config"
	"github.com/telekom/netdiag/pkg/report"
)

// NewCmdPing creates the ping command
func NewCmdPing() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ping <hostname>",
		Aliases: []string{"p"},
		Short:   "Send ICMP echo requests to a host",
		Long: "Send ICMP echo requests to a host and print every reply followed by\n" +
			"the packet loss and round trip statistics. Without --count ping runs\n" +
			"until it is interrupted.",
		Args: cobra.ExactArgs(1),
		PreRunE: bindFlags(
			binding{key: "ping.count", flag: "count"},
			binding{key: "ping.interval", flag: "interval"},
			binding{key: "ping.ttl", flag: "ttl"},
		),
		RunE: runPing,
	}

	cmd.Flags().IntP("count", "c", 0, "number of echo requests to send, 0 sends until interrupted")
	cmd.Flags().IntP("timeout", "t", int(ping.DefaultTimeout.Seconds()), "timeout of a single echo request in seconds")
	cmd.Flags().DurationP("interval", "i", ping.DefaultInterval, "time between two echo requests")
	cmd.Flags().Int("ttl", ping.DefaultTTL, "time to live of the echo requests")

	return cmd
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	log := logger.FromContext(ctx)
	target := args[0]

	cfg, err := loadConfig(ctx, func(cfg *config.Config) error {
		timeout, ok, err := secondsFlag(cmd, "timeout")
		if ok {
			cfg.Ping.Timeout = timeout
		}
		return err
	})
	if err != nil {
		return err
	}

	client := newPingClient()
	tel, err := startTelemetry(ctx, cfg, cmd.Name(), cmd.Root().Version, client.GetCollectors()...)
	if err != nil {
		return err
	}
	defer tel.Close(ctx)

	w := report.NewWriter(cmd.OutOrStdout(), cfg.Output)
	if err := w.Header("Ping", target); err != nil {
		return err
	}

	stats, err := client.Run(ctx, target, cfg.Ping, func(r ping.Reply) {
		if wErr := w.PingReply(r); wErr != nil {
			log.WarnContext(ctx, "Failed to write reply", "error", wErr)
		}
	})
	if err != nil {
		return err
	}
	return w.PingSummary(stats)
}
