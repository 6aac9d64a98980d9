// Package outbreak projects disease outbreak probabilities and case
// counts for a location and forecast horizon.
package outbreak

import (
	"math"
	"sort"
	"time"

	"github.com/RegionalHealth/RH-Backend/internal/catalog"
	"github.com/RegionalHealth/RH-Backend/internal/risk"
)

const highRiskProbability = 0.7

type Prediction struct {
	Disease            string            `json:"disease"`
	Probability        float64           `json:"probability"`
	Confidence         float64           `json:"confidence"`
	Severity           catalog.RiskLevel `json:"severity"`
	EstimatedCases     int               `json:"estimated_cases"`
	PeakDate           string            `json:"peak_date"`
	RiskFactors        []string          `json:"risk_factors"`
	PreventiveMeasures []string          `json:"preventive_measures"`
	Location           string            `json:"location"`
	Horizon            risk.Horizon      `json:"timeframe"`
	LastUpdated        time.Time         `json:"last_updated"`
}

type Summary struct {
	TotalPredictions    int         `json:"total_predictions"`
	HighRiskOutbreaks   int         `json:"high_risk_outbreaks"`
	EstimatedTotalCases int         `json:"estimated_total_cases"`
	MostLikelyOutbreak  *Prediction `json:"most_likely_outbreak,omitempty"`
	AverageConfidence   float64     `json:"average_confidence"`
}

type Report struct {
	Predictions []Prediction `json:"predictions"`
	Summary     Summary      `json:"summary"`
	Confidence  float64      `json:"confidence"`
}

// Engine adjusts a fixed set of disease profiles against the catalog.
type Engine struct {
	catalog  *catalog.Catalog
	profiles []Profile
}

// NewEngine uses DefaultProfiles when profiles is empty.
func NewEngine(c *catalog.Catalog, profiles []Profile) *Engine {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}
	return &Engine{catalog: c, profiles: profiles}
}

// LocationMultiplier scales probability and cases by the location's risk
// level. Anything other than high or medium, critical included, gets 0.8.
func LocationMultiplier(level catalog.RiskLevel) float64 {
	switch level {
	case catalog.RiskHigh:
		return 1.1
	case catalog.RiskMedium:
		return 1.0
	default:
		return 0.8
	}
}

// HorizonMultiplier scales probability only.
func HorizonMultiplier(h risk.Horizon) float64 {
	switch h {
	case risk.OneMonth:
		return 1.2
	case risk.ThreeMonths:
		return 0.9
	default:
		return 1.0
	}
}

// Predict adjusts every profile for the location and horizon. A location
// that does not resolve is treated as the national aggregate.
func (e *Engine) Predict(stateID, districtID string, h risk.Horizon) Report {
	locMult := 1.0
	if loc, ok := e.catalog.Resolve(stateID, districtID); ok {
		locMult = LocationMultiplier(loc.RiskLevel)
	}
	timeMult := HorizonMultiplier(h)
	label := e.catalog.LocationName(stateID, districtID)
	now := time.Now().UTC()

	preds := make([]Prediction, 0, len(e.profiles))
	for _, p := range e.profiles {
		prob := p.Probability * locMult * timeMult
		preds = append(preds, Prediction{
			Disease:            p.Disease,
			Probability:        math.Max(0, math.Min(1, prob)),
			Confidence:         p.Confidence,
			Severity:           p.Severity,
			EstimatedCases:     int(math.Round(float64(p.EstimatedCases) * locMult)),
			PeakDate:           p.PeakDate,
			RiskFactors:        append([]string(nil), p.RiskFactors...),
			PreventiveMeasures: append([]string(nil), p.PreventiveMeasures...),
			Location:           label,
			Horizon:            h,
			LastUpdated:        now,
		})
	}

	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Probability > preds[j].Probability
	})

	report := Report{
		Predictions: preds,
		Summary:     Summary{TotalPredictions: len(preds)},
	}
	if len(preds) == 0 {
		return report
	}

	var confSum float64
	for _, p := range preds {
		if p.Probability > highRiskProbability {
			report.Summary.HighRiskOutbreaks++
		}
		report.Summary.EstimatedTotalCases += p.EstimatedCases
		confSum += p.Confidence
	}
	top := preds[0]
	report.Summary.MostLikelyOutbreak = &top
	report.Summary.AverageConfidence = confSum / float64(len(preds))
	report.Confidence = report.Summary.AverageConfidence
	return report
}
