package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sample reads one series from the registry. Counters and gauges only.
func sample(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	series:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue series
				}
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestObserveCountsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.Observe(context.Background(), "ledger.create", true, time.Millisecond)
	p.Observe(context.Background(), "ledger.create", true, time.Millisecond)
	p.Observe(context.Background(), "ledger.create", false, time.Millisecond)
	p.Observe(context.Background(), "", true, time.Millisecond)

	if got := sample(t, reg, "rh_operations_total", map[string]string{"operation": "ledger.create", "result": "success"}); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := sample(t, reg, "rh_operations_total", map[string]string{"operation": "ledger.create", "result": "error"}); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestLedgerGaugeAndRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.SetLedgerRecords(12)
	if got := sample(t, reg, "rh_ledger_records", nil); got != 12 {
		t.Errorf("ledger_records = %v, want 12", got)
	}

	p.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	labels := map[string]string{"method": "GET", "route": "unmatched", "code": "404"}
	if got := sample(t, reg, "rh_http_requests_total", labels); got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}
