// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics defines the metric collectors of the traceroute client
type metrics struct {
	hops   *prometheus.GaugeVec
	rtt    *prometheus.HistogramVec
	probes *prometheus.CounterVec
}

// newMetrics initializes metric collectors of the traceroute client
func newMetrics() metrics {
	return metrics{
		hops: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "netdiag_traceroute_hops",
				Help: "Number of hops of the last walk to the target.",
			},
			[]string{"target"},
		),
		rtt: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netdiag_traceroute_hop_rtt_seconds",
				Help:    "Round trip times of answered traceroute probes in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"target", "ttl"},
		),
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netdiag_traceroute_probes_total",
				Help: "Total number of traceroute probes by result.",
			},
			[]string{"target", "result"},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.hops,
		m.rtt,
		m.probes,
	}
}

// observe records the samples of one hop
func (m *metrics) observe(target string, hop HopResult) {
	ttl := prometheus.Labels{"target": target, "ttl": strconv.Itoa(hop.TTL)}
	for _, s := range hop.Samples {
		if !s.Answered {
			m.probes.WithLabelValues(target, "lost").Inc()
			continue
		}
		m.probes.WithLabelValues(target, "answered").Inc()
		m.rtt.With(ttl).Observe(s.RTT.Seconds())
	}
}

// set records the outcome of a walk
func (m *metrics) set(target string, res Result) {
	m.hops.WithLabelValues(target).Set(float64(len(res.Hops)))
}
