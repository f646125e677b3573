// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics defines the metric collectors of the pinger
type metrics struct {
	rtt     *prometheus.HistogramVec
	packets *prometheus.CounterVec
}

// newMetrics initializes metric collectors of the pinger
func newMetrics() metrics {
	return metrics{
		rtt: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netdiag_ping_rtt_seconds",
				Help:    "Round trip times of answered echo requests in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"target"},
		),
		packets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netdiag_ping_packets_total",
				Help: "Total number of echo requests by result.",
			},
			[]string{"target", "result"},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rtt,
		m.packets,
	}
}

// observe records the outcome of one echo request
func (m *metrics) observe(target string, r Reply) {
	if !r.Answered {
		m.packets.WithLabelValues(target, "lost").Inc()
		return
	}
	m.packets.WithLabelValues(target, "answered").Inc()
	m.rtt.WithLabelValues(target).Observe(r.RTT.Seconds())
}
