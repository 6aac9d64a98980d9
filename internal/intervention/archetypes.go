package intervention

import (
	"errors"
	"fmt"
)

var ErrInvalidArchetype = errors.New("invalid intervention archetype")

// Archetype is a fixed intervention template used as simulation input.
type Archetype struct {
	Type                  string  `json:"type"`
	Name                  string  `json:"name"`
	TargetPopulation      int     `json:"target_population"`
	EstimatedCost         float64 `json:"estimated_cost"`
	Duration              string  `json:"duration"`
	ExpectedEffectiveness float64 `json:"expected_effectiveness"`
	ImpactOnRisk          float64 `json:"impact_on_risk"`
}

func DefaultArchetypes() []Archetype {
	return []Archetype{
		{
			Type:                  "vaccination",
			Name:                  "Mass Vaccination Campaign",
			TargetPopulation:      100000,
			EstimatedCost:         2500000,
			Duration:              "6 weeks",
			ExpectedEffectiveness: 0.85,
			ImpactOnRisk:          -0.3,
		},
		{
			Type:                  "screening",
			Name:                  "Community Health Screening",
			TargetPopulation:      50000,
			EstimatedCost:         800000,
			Duration:              "4 weeks",
			ExpectedEffectiveness: 0.78,
			ImpactOnRisk:          -0.15,
		},
		{
			Type:                  "awareness",
			Name:                  "Public Health Education",
			TargetPopulation:      200000,
			EstimatedCost:         300000,
			Duration:              "8 weeks",
			ExpectedEffectiveness: 0.65,
			ImpactOnRisk:          -0.1,
		},
		{
			Type:                  "treatment",
			Name:                  "Enhanced Treatment Protocol",
			TargetPopulation:      25000,
			EstimatedCost:         1200000,
			Duration:              "12 weeks",
			ExpectedEffectiveness: 0.92,
			ImpactOnRisk:          -0.25,
		},
	}
}

// Validate rejects archetypes whose cost would make cost-effectiveness
// undefined.
// MaxDurationWeeks bounds the leading number of a duration, which sizes
// the phased timeline.
const MaxDurationWeeks = 520

func (a Archetype) Validate() error {
	if a.Type == "" || a.Name == "" {
		return fmt.Errorf("%w: type and name are required", ErrInvalidArchetype)
	}
	if !(a.EstimatedCost > 0) {
		return fmt.Errorf("%w: %s estimated cost must be positive", ErrInvalidArchetype, a.Type)
	}
	if a.ExpectedEffectiveness < 0 || a.ExpectedEffectiveness > 1 {
		return fmt.Errorf("%w: %s effectiveness outside [0,1]", ErrInvalidArchetype, a.Type)
	}
	if n, ok := LeadingInt(a.Duration); ok && n > MaxDurationWeeks {
		return fmt.Errorf("%w: %s duration %q exceeds %d", ErrInvalidArchetype, a.Type, a.Duration, MaxDurationWeeks)
	}
	return nil
}

type Requirements struct {
	Staff      int `json:"staff"`
	Equipment  int `json:"equipment"`
	Facilities int `json:"facilities"`
}

var requirementsByType = map[string]Requirements{
	"vaccination": {Staff: 50, Equipment: 25, Facilities: 10},
	"screening":   {Staff: 30, Equipment: 15, Facilities: 8},
	"awareness":   {Staff: 20, Equipment: 5, Facilities: 15},
	"treatment":   {Staff: 80, Equipment: 40, Facilities: 12},
}

// RequirementsFor returns the staffing table for an archetype type.
// Unknown types use the vaccination figures.
func RequirementsFor(archetypeType string) Requirements {
	if r, ok := requirementsByType[archetypeType]; ok {
		return r
	}
	return requirementsByType["vaccination"]
}
