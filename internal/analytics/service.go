// Package analytics runs the heuristic engines for a location filter and
// wraps their reports in the response envelope shared by the HTTP API and
// the CLI.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RegionalHealth/RH-Backend/internal/anomaly"
	"github.com/RegionalHealth/RH-Backend/internal/catalog"
	"github.com/RegionalHealth/RH-Backend/internal/demand"
	"github.com/RegionalHealth/RH-Backend/internal/intervention"
	"github.com/RegionalHealth/RH-Backend/internal/metrics"
	"github.com/RegionalHealth/RH-Backend/internal/outbreak"
	"github.com/RegionalHealth/RH-Backend/internal/risk"
)

const (
	ModelVersion = "2.1.0"

	// fallbackConfidence is reported when an engine produced none.
	fallbackConfidence = 0.8
)

var ErrUnknownKind = errors.New("invalid analysis type")

// Kind names one analysis.
type Kind string

const (
	KindPredictions    Kind = "predictions"
	KindResourceDemand Kind = "resource-demand"
	KindRiskAssessment Kind = "risk-assessment"
	KindSimulation     Kind = "simulation"
	KindAnomalies      Kind = "anomaly-detection"
)

var Kinds = []Kind{KindPredictions, KindResourceDemand, KindRiskAssessment, KindSimulation, KindAnomalies}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Query is the location filter and forecast window of one request.
type Query struct {
	StateID    string       `json:"state_id,omitempty"`
	DistrictID string       `json:"district_id,omitempty"`
	Horizon    risk.Horizon `json:"horizon"`
}

type Metadata struct {
	GeneratedAt  time.Time `json:"generated_at"`
	ModelVersion string    `json:"model_version"`
	Confidence   float64   `json:"confidence"`
	Filters      Query     `json:"filters"`
}

type Envelope struct {
	Type     Kind     `json:"type"`
	Data     any      `json:"data"`
	Metadata Metadata `json:"metadata"`
}

type Service struct {
	catalog   *catalog.Catalog
	rnd       risk.Source
	outbreaks *outbreak.Engine
	demand    *demand.Forecaster
	simulator *intervention.Simulator
	detector  *anomaly.Detector
	metrics   metrics.Recorder
	now       func() time.Time
}

type Option func(*Service)

// WithSource replaces the random source used by risk and demand.
func WithSource(rnd risk.Source) Option {
	return func(s *Service) { s.rnd = rnd }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithRecorder(rec metrics.Recorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// NewService builds every engine over the same catalog with the default
// profiles, base demand and archetypes.
func NewService(c *catalog.Catalog, anomalies []anomaly.Record, opts ...Option) (*Service, error) {
	s := &Service{
		catalog: c,
		rnd:     risk.Global,
		metrics: metrics.Nop{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	sim, err := intervention.NewSimulator(c, nil)
	if err != nil {
		return nil, err
	}
	s.simulator = sim
	s.outbreaks = outbreak.NewEngine(c, nil)
	s.demand = demand.NewForecaster(c, nil, s.rnd)
	s.detector = anomaly.NewDetector(c, anomalies)
	return s, nil
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Run computes one analysis. Unknown locations fall back inside the
// engines, so the only error is an unknown kind.
func (s *Service) Run(ctx context.Context, kind Kind, q Query) (Envelope, error) {
	start := time.Now()
	q.Horizon = risk.ParseHorizon(string(q.Horizon))

	var (
		data       any
		confidence float64
	)
	switch kind {
	case KindPredictions:
		rep := s.outbreaks.Predict(q.StateID, q.DistrictID, q.Horizon)
		data, confidence = rep, rep.Confidence
	case KindResourceDemand:
		rep := s.demand.Forecast(q.StateID, q.DistrictID, q.Horizon)
		data, confidence = rep, rep.Confidence
	case KindRiskAssessment:
		rep := risk.Assess(s.catalog, q.StateID, q.DistrictID, s.rnd)
		data, confidence = rep, rep.Confidence
	case KindSimulation:
		rep := s.simulator.Simulate(q.StateID, q.DistrictID)
		data, confidence = rep, rep.Confidence
	case KindAnomalies:
		rep := s.detector.Detect(q.StateID, q.DistrictID, s.now())
		data, confidence = rep, rep.Confidence
	default:
		s.metrics.Observe(ctx, "analytics", false, time.Since(start))
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if confidence == 0 {
		confidence = fallbackConfidence
	}
	s.metrics.Observe(ctx, "analytics."+string(kind), true, time.Since(start))

	return Envelope{
		Type: kind,
		Data: data,
		Metadata: Metadata{
			GeneratedAt:  s.now(),
			ModelVersion: ModelVersion,
			Confidence:   confidence,
			Filters:      q,
		},
	}, nil
}
