// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/telekom/netdiag/internal/logger"
	"github.com/telekom/netdiag/internal/probe"
	"github.com/telekom/netdiag/internal/traceroute"
	"github.com/telekom/netdiag/pkg/config"
	"github.com/telekom/netdiag/pkg/report"
)

// NewCmdTraceroute creates the traceroute command
func NewCmdTraceroute() *cobra.Command {
	return newCmdTrace(false)
}

// NewCmdParisTraceroute creates the paris-traceroute command
func NewCmdParisTraceroute() *cobra.Command {
	return newCmdTrace(true)
}

func newCmdTrace(paris bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "traceroute <hostname>",
		Aliases: []string{"t"},
		Short:   "Print the route packets take to a host",
		Long: "Send probes with increasing TTL towards a host and print every\n" +
			"router that answers along with its round trip times.",
		Args: cobra.ExactArgs(1),
		PreRunE: bindFlags(
			binding{key: "traceroute.protocol", flag: "protocol"},
			binding{key: "traceroute.maxHops", flag: "max-hops"},
			binding{key: "traceroute.queries", flag: "queries"},
		),
		RunE: runTrace(paris),
	}
	if paris {
		cmd.Use = "paris-traceroute <hostname>"
		cmd.Aliases = []string{"pt"}
		cmd.Short = "Print the route packets take to a host, keeping the flow constant"
		cmd.Long = "Like traceroute, but every probe of a run carries the same flow\n" +
			"identifier so load balancers forward all of them along the same path."
	}

	cmd.Flags().IntP("timeout", "t", int(traceroute.DefaultTimeout.Seconds()), "timeout of a single probe in seconds")
	cmd.Flags().StringP("protocol", "p", string(probe.ProtocolICMP), "probe protocol: icmp or udp")
	cmd.Flags().IntP("max-hops", "m", traceroute.DefaultMaxTTL, "maximum number of hops to probe")
	cmd.Flags().IntP("queries", "q", traceroute.DefaultQueries, "number of probes per hop")

	return cmd
}

func runTrace(paris bool) func(cmd *cobra.Command, args []string) error {
	title := "Traceroute"
	if paris {
		title = "Paris traceroute"
	}

	return func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		log := logger.FromContext(ctx)
		target := args[0]

		cfg, err := loadConfig(ctx, func(cfg *config.Config) error {
			proto, err := probe.ParseProtocol(string(cfg.Traceroute.Protocol))
			if err != nil {
				return err
			}
			cfg.Traceroute.Protocol = proto
			cfg.Traceroute.Paris = paris

			timeout, ok, err := secondsFlag(cmd, "timeout")
			if ok {
				cfg.Traceroute.Timeout = timeout
			}
			return err
		})
		if err != nil {
			return err
		}

		client := newTraceClient(paris)
		tel, err := startTelemetry(ctx, cfg, cmd.Name(), cmd.Root().Version, client.GetCollectors()...)
		if err != nil {
			return err
		}
		defer tel.Close(ctx)

		w := report.NewWriter(cmd.OutOrStdout(), cfg.Output)
		if err := w.Header(title, target); err != nil {
			return err
		}

		res, err := client.Run(ctx, target, cfg.Traceroute, func(h traceroute.HopResult) {
			if wErr := w.Hop(h); wErr != nil {
				log.WarnContext(ctx, "Failed to write hop", "error", wErr)
			}
		})
		if err != nil {
			return err
		}
		return w.TraceSummary(res)
	}
}
