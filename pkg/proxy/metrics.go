// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import "github.com/prometheus/client_golang/prometheus"

// metrics defines the metric collectors of the proxy
type metrics struct {
	cache          *prometheus.CounterVec
	upstreamErrors prometheus.Counter
}

// newMetrics initializes metric collectors of the proxy
func newMetrics() metrics {
	return metrics{
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netdiag_proxy_cache_total",
				Help: "Total number of cacheable proxy requests by cache result.",
			},
			[]string{"result"},
		),
		upstreamErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "netdiag_proxy_upstream_errors_total",
				Help: "Total number of requests that could not be served by the upstream server.",
			},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{m.cache, m.upstreamErrors}
}
