// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package fileserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics defines the metric collectors of the file server
type metrics struct {
	requests *prometheus.CounterVec
}

// newMetrics initializes metric collectors of the file server
func newMetrics() metrics {
	return metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netdiag_fileserver_requests_total",
				Help: "Total number of file server requests by status code.",
			},
			[]string{"code"},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests}
}

// middleware counts the responses by status code
func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
	})
}
