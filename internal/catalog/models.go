package catalog

// RiskLevel is the categorical risk label assigned to a location.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Levels lists the canonical risk levels from lowest to highest.
var Levels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Valid reports whether l is one of the four canonical levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Kind discriminates the two location variants.
type Kind string

const (
	KindState    Kind = "state"
	KindDistrict Kind = "district"
)

type Coordinates struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// HealthMetrics are the per-location indicators feeding the risk model.
// Mortality and morbidity are per-capita rates; coverage and access are
// percentages in 0-100. Disease case counts are informational only.
type HealthMetrics struct {
	MortalityRate       float64 `yaml:"mortality_rate" json:"mortality_rate"`
	MorbidityRate       float64 `yaml:"morbidity_rate" json:"morbidity_rate"`
	VaccinationCoverage float64 `yaml:"vaccination_coverage" json:"vaccination_coverage"`
	HealthcareAccess    float64 `yaml:"healthcare_access" json:"healthcare_access"`
	WaterborneCases     int     `yaml:"waterborne_cases" json:"waterborne_cases,omitempty"`
	MalariaCases        int     `yaml:"malaria_cases" json:"malaria_cases,omitempty"`
}

// Location is the shared shape of states and districts. Kind tells them
// apart; StateID is only set on districts and Code only on states.
type Location struct {
	Kind                   Kind          `yaml:"-" json:"type"`
	ID                     string        `yaml:"id" json:"id"`
	Name                   string        `yaml:"name" json:"name"`
	Code                   string        `yaml:"code" json:"code,omitempty"`
	StateID                string        `yaml:"state_id" json:"state_id,omitempty"`
	Population             int           `yaml:"population" json:"population"`
	RiskLevel              RiskLevel     `yaml:"risk_level" json:"risk_level"`
	ActiveAlerts           int           `yaml:"active_alerts" json:"active_alerts"`
	CompletedInterventions int           `yaml:"completed_interventions" json:"completed_interventions"`
	Coordinates            Coordinates   `yaml:"coordinates" json:"coordinates"`
	HealthMetrics          HealthMetrics `yaml:"health_metrics" json:"health_metrics"`
}

type State struct {
	Location  `yaml:",inline"`
	Districts []District `yaml:"districts" json:"districts"`
}

type District struct {
	Location `yaml:",inline"`
}
