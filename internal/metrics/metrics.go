// Package metrics exports service counters to Prometheus.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives operation outcomes from the domain services.
type Recorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	SetLedgerRecords(n int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Observe(context.Context, string, bool, time.Duration) {}
func (Nop) SetLedgerRecords(int)                                 {}

type Prometheus struct {
	operations *prometheus.CounterVec
	opLatency  *prometheus.HistogramVec
	requests   *prometheus.CounterVec
	reqLatency *prometheus.HistogramVec
	records    prometheus.Gauge
}

// NewPrometheus registers the collectors on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rh",
			Name:      "operations_total",
			Help:      "Domain operations by name and result.",
		}, []string{"operation", "result"}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rh",
			Name:      "operation_duration_seconds",
			Help:      "Domain operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rh",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "code"}),
		reqLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rh",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rh",
			Name:      "ledger_records",
			Help:      "Resource records currently held by the ledger.",
		}),
	}
	reg.MustRegister(p.operations, p.opLatency, p.requests, p.reqLatency, p.records)
	return p
}

func (p *Prometheus) Observe(_ context.Context, operation string, success bool, d time.Duration) {
	if operation == "" {
		return
	}
	result := "error"
	if success {
		result = "success"
	}
	p.operations.WithLabelValues(operation, result).Inc()
	p.opLatency.WithLabelValues(operation).Observe(d.Seconds())
}

func (p *Prometheus) SetLedgerRecords(n int) {
	p.records.Set(float64(n))
}

// ObserveRequest records one served HTTP request.
func (p *Prometheus) ObserveRequest(method, route string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.reqLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
