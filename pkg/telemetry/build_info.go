// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	buildInfoMetricName = "netdiag_build_info"
	buildInfoHelp       = "Version of netdiag and the command it runs. Always 1."
)

// RegisterBuildInfo registers the netdiag_build_info info-style metric on the given registry.
// It sets the gauge to 1 with labels version and command.
func RegisterBuildInfo(registry prometheus.Registerer, version, command string) error {
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: buildInfoMetricName,
			Help: buildInfoHelp,
		},
		[]string{"version", "command"},
	)
	info.WithLabelValues(version, command).Set(1)
	return registry.Register(info)
}
