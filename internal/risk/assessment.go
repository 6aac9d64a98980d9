package risk

import (
	"sort"

	"github.com/RegionalHealth/RH-Backend/internal/catalog"
)

const (
	stateConfidence    = 0.82
	districtConfidence = 0.78
	maxAssessments     = 20
)

// Assessment is the derived view of one location. It is recomputed on
// every query and never stored.
type Assessment struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Type               catalog.Kind      `json:"type"`
	StateID            string            `json:"state_id,omitempty"`
	StateName          string            `json:"state_name,omitempty"`
	CurrentRiskLevel   catalog.RiskLevel `json:"current_risk_level"`
	RiskScore          float64           `json:"risk_score"`
	PredictedRiskLevel catalog.RiskLevel `json:"predicted_risk_level"`
	RiskFactors        []Factor          `json:"risk_factors"`
	Population         int               `json:"population"`
	VulnerabilityIndex float64           `json:"vulnerability_index"`
	Confidence         float64           `json:"confidence"`
}

type Trend struct {
	IncreasingRisk int `json:"increasing_risk"`
	StableRisk     int `json:"stable_risk"`
	DecreasingRisk int `json:"decreasing_risk"`
}

type Summary struct {
	TotalLocations    int         `json:"total_locations"`
	HighRiskLocations int         `json:"high_risk_locations"`
	AverageRiskScore  float64     `json:"average_risk_score"`
	TopRiskLocation   *Assessment `json:"top_risk_location,omitempty"`
	TrendAnalysis     Trend       `json:"trend_analysis"`
}

type Report struct {
	Assessments []Assessment `json:"assessments"`
	Summary     Summary      `json:"summary"`
	Confidence  float64      `json:"confidence"`
}

// AssessLocation scores a single location.
func AssessLocation(loc catalog.Location, rnd Source) Assessment {
	a := Assessment{
		ID:                 loc.ID,
		Name:               loc.Name,
		Type:               loc.Kind,
		CurrentRiskLevel:   loc.RiskLevel,
		RiskScore:          ScoreFromMetrics(loc.RiskLevel, loc.HealthMetrics),
		PredictedRiskLevel: PredictFuture(loc.RiskLevel, loc.HealthMetrics, loc.ActiveAlerts, rnd),
		RiskFactors:        AnalyzeRiskFactors(loc.HealthMetrics, loc.ActiveAlerts),
		Population:         loc.Population,
		VulnerabilityIndex: VulnerabilityIndex(loc.HealthMetrics),
		Confidence:         stateConfidence,
	}
	if loc.Kind == catalog.KindDistrict {
		a.StateID = loc.StateID
		a.Confidence = districtConfidence
	}
	return a
}

// Assess scores every state matching stateID together with its districts
// matching districtID, highest score first, keeping the top 20. An
// unknown stateID falls back to every state.
func Assess(c *catalog.Catalog, stateID, districtID string, rnd Source) Report {
	states := c.States()
	if stateID != "" {
		if s, ok := c.State(stateID); ok {
			states = []catalog.State{s}
		}
	}

	var all []Assessment
	for _, s := range states {
		all = append(all, AssessLocation(s.Location, rnd))
		for _, d := range s.Districts {
			if districtID != "" && d.ID != districtID {
				continue
			}
			a := AssessLocation(d.Location, rnd)
			a.StateName = s.Name
			all = append(all, a)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].RiskScore > all[j].RiskScore
	})

	report := Report{Summary: Summary{TotalLocations: len(all)}}
	if len(all) == 0 {
		report.Assessments = []Assessment{}
		return report
	}

	var scoreSum, confSum float64
	for _, a := range all {
		scoreSum += a.RiskScore
		confSum += a.Confidence
		if a.RiskScore > 0.7 {
			report.Summary.HighRiskLocations++
		}
		if a.PredictedRiskLevel == catalog.RiskHigh || a.PredictedRiskLevel == catalog.RiskCritical {
			report.Summary.TrendAnalysis.IncreasingRisk++
		}
		if a.PredictedRiskLevel == a.CurrentRiskLevel {
			report.Summary.TrendAnalysis.StableRisk++
		}
		if Value(a.PredictedRiskLevel) < Value(a.CurrentRiskLevel) {
			report.Summary.TrendAnalysis.DecreasingRisk++
		}
	}
	n := float64(len(all))
	report.Summary.AverageRiskScore = scoreSum / n
	report.Confidence = confSum / n
	top := all[0]
	report.Summary.TopRiskLocation = &top

	if len(all) > maxAssessments {
		all = all[:maxAssessments]
	}
	report.Assessments = all
	return report
}
