// Package risk turns categorical risk labels and health metrics into
// continuous scores, vulnerability indices and projected risk levels.
// Every function here is pure apart from the injected random Source.
package risk

import (
	"github.com/RegionalHealth/RH-Backend/internal/catalog"
)

// Score thresholds used by Bucketize.
const (
	criticalThreshold = 0.8
	highThreshold     = 0.6
	mediumThreshold   = 0.4
)

// Value maps a level to its canonical score. Unknown levels map to 0.5.
func Value(level catalog.RiskLevel) float64 {
	switch level {
	case catalog.RiskCritical:
		return 0.9
	case catalog.RiskHigh:
		return 0.7
	case catalog.RiskMedium:
		return 0.5
	case catalog.RiskLow:
		return 0.2
	default:
		return 0.5
	}
}

// Bucketize maps a continuous score back onto a level.
func Bucketize(score float64) catalog.RiskLevel {
	switch {
	case score >= criticalThreshold:
		return catalog.RiskCritical
	case score >= highThreshold:
		return catalog.RiskHigh
	case score >= mediumThreshold:
		return catalog.RiskMedium
	default:
		return catalog.RiskLow
	}
}

// HealthFactor is the weighted metric penalty added on top of the level's
// base value. The individual ratios are not clamped, so metrics beyond
// their nominal range push the factor past 1.
func HealthFactor(m catalog.HealthMetrics) float64 {
	return 0.3*(1-m.VaccinationCoverage/100) +
		0.3*(m.MortalityRate/20) +
		0.2*(1-m.HealthcareAccess/100) +
		0.2*(m.MorbidityRate/50)
}

// ScoreFromMetrics combines the level's base value with HealthFactor and
// caps the sum at 1.0.
func ScoreFromMetrics(level catalog.RiskLevel, m catalog.HealthMetrics) float64 {
	return min(1.0, Value(level)+HealthFactor(m))
}

// VulnerabilityIndex weights the same four normalized terms equally.
// It has no upper clamp.
func VulnerabilityIndex(m catalog.HealthMetrics) float64 {
	return 0.25*(1-m.VaccinationCoverage/100) +
		0.25*(m.MortalityRate/20) +
		0.25*(1-m.HealthcareAccess/100) +
		0.25*(m.MorbidityRate/50)
}

// PredictFuture projects the next level from the current score, an
// alert pressure term and a noise term bounded to [-0.05, +0.05).
func PredictFuture(level catalog.RiskLevel, m catalog.HealthMetrics, activeAlerts int, rnd Source) catalog.RiskLevel {
	return Bucketize(futureScore(level, m, activeAlerts, rnd))
}

func futureScore(level catalog.RiskLevel, m catalog.HealthMetrics, activeAlerts int, rnd Source) float64 {
	alertFactor := float64(activeAlerts) / 10
	noise := (rnd.Float64() - 0.5) * 0.1
	return ScoreFromMetrics(level, m) + alertFactor*0.1 + noise
}

// Impact tiers attached to risk factors.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
)

type Factor struct {
	Factor string `json:"factor"`
	Impact Impact `json:"impact"`
}

// AnalyzeRiskFactors lists the thresholds a location crosses, always in
// the order vaccination, mortality, access, alerts.
func AnalyzeRiskFactors(m catalog.HealthMetrics, activeAlerts int) []Factor {
	factors := []Factor{}
	if m.VaccinationCoverage < 70 {
		factors = append(factors, Factor{Factor: "Low vaccination coverage", Impact: ImpactHigh})
	}
	if m.MortalityRate > 7 {
		factors = append(factors, Factor{Factor: "High mortality rate", Impact: ImpactHigh})
	}
	if m.HealthcareAccess < 70 {
		factors = append(factors, Factor{Factor: "Limited healthcare access", Impact: ImpactMedium})
	}
	if activeAlerts > 5 {
		factors = append(factors, Factor{Factor: "Multiple active alerts", Impact: ImpactHigh})
	}
	return factors
}
