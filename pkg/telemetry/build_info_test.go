// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterBuildInfo(t *testing.T) {
	registry := prometheus.NewRegistry()

	if err := RegisterBuildInfo(registry, "v1.2.3", "traceroute"); err != nil {
		t.Fatalf("RegisterBuildInfo() error = %v", err)
	}

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	var found bool
	for _, mf := range metrics {
		if mf.GetName() != buildInfoMetricName {
			continue
		}
		found = true
		if len(mf.GetMetric()) != 1 {
			t.Errorf("expected 1 metric, got %d", len(mf.GetMetric()))
		}
		for _, m := range mf.GetMetric() {
			if m.GetGauge().GetValue() != 1 {
				t.Errorf("expected value 1, got %v", m.GetGauge().GetValue())
			}
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["version"] != "v1.2.3" || labels["command"] != "traceroute" {
				t.Errorf("unexpected labels: %v", labels)
			}
		}
	}
	if !found {
		t.Error("netdiag_build_info metric not found in registry")
	}
}

func TestRegisterBuildInfo_twice(t *testing.T) {
	registry := prometheus.NewRegistry()
	if err := RegisterBuildInfo(registry, "v1", "ping"); err != nil {
		t.Fatalf("RegisterBuildInfo() error = %v", err)
	}
	if err := RegisterBuildInfo(registry, "v1", "ping"); err == nil {
		t.Error("RegisterBuildInfo() registered the same metric twice")
	}
}
