// Package intervention ranks a fixed catalog of health interventions by
// the risk reduction they buy per million spent.
package intervention

import (
	"math"
	"sort"

	"github.com/RegionalHealth/RH-Backend/internal/catalog"
	"github.com/RegionalHealth/RH-Backend/internal/risk"
)

const (
	riskFloor         = 0.1
	intervalHalfWidth = 0.1
	reportConfidence  = 0.82
)

type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type Simulation struct {
	Archetype
	CurrentRisk          catalog.RiskLevel `json:"current_risk"`
	ProjectedRisk        catalog.RiskLevel `json:"projected_risk"`
	RiskReduction        float64           `json:"risk_reduction"`
	CostEffectiveness    float64           `json:"cost_effectiveness"`
	ConfidenceInterval   Interval          `json:"confidence_interval"`
	ResourceRequirements Requirements      `json:"resource_requirements"`
	Timeline             []Phase           `json:"timeline"`
	Location             string            `json:"location"`
}

type Recommendations struct {
	MostCostEffective *Simulation `json:"most_cost_effective,omitempty"`
	HighestImpact     *Simulation `json:"highest_impact,omitempty"`
	QuickestResult    *Simulation `json:"quickest_result,omitempty"`
}

type Summary struct {
	TotalInterventions    int     `json:"total_interventions"`
	AverageCost           float64 `json:"average_cost"`
	AverageEffectiveness  float64 `json:"average_effectiveness"`
	TotalTargetPopulation int     `json:"total_target_population"`
}

type Report struct {
	Simulations     []Simulation    `json:"simulations"`
	Recommendations Recommendations `json:"recommendations"`
	Summary         Summary         `json:"summary"`
	Confidence      float64         `json:"confidence"`
}

type Simulator struct {
	catalog    *catalog.Catalog
	archetypes []Archetype
}

// NewSimulator validates the archetypes, falling back to
// DefaultArchetypes when none are given.
func NewSimulator(c *catalog.Catalog, archetypes []Archetype) (*Simulator, error) {
	if len(archetypes) == 0 {
		archetypes = DefaultArchetypes()
	}
	for _, a := range archetypes {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	return &Simulator{catalog: c, archetypes: archetypes}, nil
}

// Evaluate projects one archetype against a baseline level.
func Evaluate(a Archetype, baseline catalog.RiskLevel) Simulation {
	current := risk.Value(baseline)
	projected := math.Max(riskFloor, current+a.ImpactOnRisk)
	reduction := current - projected
	return Simulation{
		Archetype:     a,
		CurrentRisk:   baseline,
		ProjectedRisk: risk.Bucketize(projected),
		RiskReduction: reduction,
		// cost is validated positive
		CostEffectiveness: reduction / (a.EstimatedCost / 1_000_000),
		ConfidenceInterval: Interval{
			Low:  a.ExpectedEffectiveness - intervalHalfWidth,
			High: math.Min(1, a.ExpectedEffectiveness+intervalHalfWidth),
		},
		ResourceRequirements: RequirementsFor(a.Type),
		Timeline:             Timeline(a),
	}
}

// Simulate evaluates every archetype against the location's risk level,
// or medium when the location does not resolve.
func (s *Simulator) Simulate(stateID, districtID string) Report {
	baseline := catalog.RiskMedium
	if loc, ok := s.catalog.Resolve(stateID, districtID); ok {
		baseline = loc.RiskLevel
	}
	label := s.catalog.LocationName(stateID, districtID)

	sims := make([]Simulation, 0, len(s.archetypes))
	for _, a := range s.archetypes {
		sim := Evaluate(a, baseline)
		sim.Location = label
		sims = append(sims, sim)
	}
	sort.SliceStable(sims, func(i, j int) bool {
		return sims[i].CostEffectiveness > sims[j].CostEffectiveness
	})

	report := Report{
		Simulations: sims,
		Summary:     Summary{TotalInterventions: len(sims)},
		Confidence:  reportConfidence,
	}
	if len(sims) == 0 {
		return report
	}

	var costSum, effSum float64
	for _, sim := range sims {
		costSum += sim.EstimatedCost
		effSum += sim.ExpectedEffectiveness
		report.Summary.TotalTargetPopulation += sim.TargetPopulation
	}
	n := float64(len(sims))
	report.Summary.AverageCost = costSum / n
	report.Summary.AverageEffectiveness = effSum / n

	best := sims[0]
	impact := sims[highestImpact(sims)]
	quick := sims[quickest(sims)]
	report.Recommendations = Recommendations{
		MostCostEffective: &best,
		HighestImpact:     &impact,
		QuickestResult:    &quick,
	}
	return report
}

// highestImpact keeps the first of equal reductions.
func highestImpact(sims []Simulation) int {
	best := 0
	for i := 1; i < len(sims); i++ {
		if sims[i].RiskReduction > sims[best].RiskReduction {
			best = i
		}
	}
	return best
}

// quickest compares only the leading integer of each duration. Durations
// without one never win.
func quickest(sims []Simulation) int {
	best := 0
	bestN, bestOK := LeadingInt(sims[0].Duration)
	for i := 1; i < len(sims); i++ {
		n, ok := LeadingInt(sims[i].Duration)
		if !ok {
			continue
		}
		if !bestOK || n < bestN {
			best, bestN, bestOK = i, n, true
		}
	}
	return best
}
