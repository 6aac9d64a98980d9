// Package demand forecasts resource demand per resource type and derives
// surplus, shortages and restocking recommendations.
package demand

import (
	"fmt"
	"math"

	"github.com/RegionalHealth/RH-Backend/internal/catalog"
	"github.com/RegionalHealth/RH-Backend/internal/risk"
)

const (
	capacityRatio   = 0.8
	populationScale = 100_000_000
	minConfidence   = 0.75
	confidenceSpan  = 0.2
	// surplus below this is a critical shortage
	criticalSurplus = -100
)

// Base is the unadjusted demand for one resource type.
type Base struct {
	Resource string
	Demand   float64
}

// DefaultBaseDemand returns the built-in demand table in display order.
func DefaultBaseDemand() []Base {
	return []Base{
		{"icuBeds", 1250},
		{"ventilators", 340},
		{"medicines", 15000},
		{"medicalStaff", 450},
		{"ambulances", 85},
		{"testingKits", 25000},
	}
}

type Prediction struct {
	Resource        string  `json:"resource"`
	CurrentCapacity int     `json:"current_capacity"`
	PredictedDemand int     `json:"predicted_demand"`
	Surplus         int     `json:"surplus"`
	Confidence      float64 `json:"confidence"`
	CriticalPeriod  string  `json:"critical_period"`
}

type Recommendation struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Timeline string `json:"timeline"`
}

type Summary struct {
	TotalResourceTypes int         `json:"total_resource_types"`
	CriticalShortages  int         `json:"critical_shortages"`
	OverallSurplus     int         `json:"overall_surplus"`
	HighestDemand      *Prediction `json:"highest_demand,omitempty"`
	AverageConfidence  float64     `json:"average_confidence"`
}

type Report struct {
	Predictions     []Prediction     `json:"predictions"`
	Summary         Summary          `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
	Confidence      float64          `json:"confidence"`
	Location        string           `json:"location"`
	Horizon         risk.Horizon     `json:"timeframe"`
}

type Forecaster struct {
	catalog *catalog.Catalog
	base    []Base
	rnd     risk.Source
}

// NewForecaster uses DefaultBaseDemand when base is empty and risk.Global
// when rnd is nil.
func NewForecaster(c *catalog.Catalog, base []Base, rnd risk.Source) *Forecaster {
	if len(base) == 0 {
		base = DefaultBaseDemand()
	}
	if rnd == nil {
		rnd = risk.Global
	}
	return &Forecaster{catalog: c, base: base, rnd: rnd}
}

// LocationMultiplier is the population share of the location times its
// risk weight. Critical locations fall into the 0.8 weight with low ones.
func LocationMultiplier(loc catalog.Location) float64 {
	var weight float64
	switch loc.RiskLevel {
	case catalog.RiskHigh:
		weight = 1.2
	case catalog.RiskMedium:
		weight = 1.0
	default:
		weight = 0.8
	}
	return float64(loc.Population) / populationScale * weight
}

func HorizonMultiplier(h risk.Horizon) float64 {
	switch h {
	case risk.OneMonth:
		return 1.4
	case risk.ThreeMonths:
		return 2.1
	default:
		return 1.0
	}
}

// CriticalPeriod names the window in which shortages are expected to bite.
func CriticalPeriod(h risk.Horizon) string {
	switch h {
	case risk.OneMonth:
		return "Week 3-4"
	case risk.ThreeMonths:
		return "Month 2-3"
	default:
		return "Week 1-2"
	}
}

// Forecast projects every base resource for the location and horizon.
func (f *Forecaster) Forecast(stateID, districtID string, h risk.Horizon) Report {
	locMult := 1.0
	if loc, ok := f.catalog.Resolve(stateID, districtID); ok {
		locMult = LocationMultiplier(loc)
	}
	timeMult := HorizonMultiplier(h)
	period := CriticalPeriod(h)

	report := Report{
		Predictions:     make([]Prediction, 0, len(f.base)),
		Recommendations: []Recommendation{},
		Location:        f.catalog.LocationName(stateID, districtID),
		Horizon:         h,
	}
	for _, b := range f.base {
		capacity := int(math.Round(b.Demand * capacityRatio))
		predicted := int(math.Round(b.Demand * timeMult * locMult))
		report.Predictions = append(report.Predictions, Prediction{
			Resource:        b.Resource,
			CurrentCapacity: capacity,
			PredictedDemand: predicted,
			Surplus:         capacity - predicted,
			Confidence:      minConfidence + f.rnd.Float64()*confidenceSpan,
			CriticalPeriod:  period,
		})
	}

	report.Summary.TotalResourceTypes = len(report.Predictions)
	if len(report.Predictions) == 0 {
		return report
	}

	var confSum float64
	highest := 0
	for i, p := range report.Predictions {
		confSum += p.Confidence
		report.Summary.OverallSurplus += p.Surplus
		if p.PredictedDemand > report.Predictions[highest].PredictedDemand {
			highest = i
		}
		if p.Surplus < 0 {
			report.Summary.CriticalShortages++
			report.Recommendations = append(report.Recommendations, Recommend(p))
		}
	}
	top := report.Predictions[highest]
	report.Summary.HighestDemand = &top
	report.Summary.AverageConfidence = confSum / float64(len(report.Predictions))
	report.Confidence = report.Summary.AverageConfidence
	return report
}

// Recommend builds the restocking advice for a shortage.
func Recommend(p Prediction) Recommendation {
	r := Recommendation{
		Resource: p.Resource,
		Action:   fmt.Sprintf("Increase %s capacity by %d units", p.Resource, -p.Surplus),
		Priority: "high",
		Timeline: "1-2 weeks",
	}
	if p.Surplus < criticalSurplus {
		r.Priority = "critical"
		r.Timeline = "immediate"
	}
	return r
}
