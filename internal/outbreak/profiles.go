package outbreak

import "github.com/RegionalHealth/RH-Backend/internal/catalog"

// Profile is the unadjusted baseline for one disease.
type Profile struct {
	Disease            string
	Probability        float64
	Confidence         float64
	Severity           catalog.RiskLevel
	EstimatedCases     int
	PeakDate           string
	RiskFactors        []string
	PreventiveMeasures []string
}

// DefaultProfiles returns a fresh copy of the built-in disease table.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Disease:        "Dengue",
			Probability:    0.78,
			Confidence:     0.85,
			Severity:       catalog.RiskHigh,
			EstimatedCases: 1250,
			PeakDate:       "2024-09-25",
			RiskFactors:    []string{"Monsoon season", "Standing water", "Temperature rise", "Humidity increase"},
			PreventiveMeasures: []string{
				"Eliminate standing water sources",
				"Increase vector control activities",
				"Enhance community awareness",
				"Strengthen surveillance systems",
			},
		},
		{
			Disease:        "Influenza",
			Probability:    0.65,
			Confidence:     0.72,
			Severity:       catalog.RiskMedium,
			EstimatedCases: 850,
			PeakDate:       "2024-09-20",
			RiskFactors:    []string{"Weather change", "High population density", "Air pollution", "Seasonal pattern"},
			PreventiveMeasures: []string{
				"Promote vaccination",
				"Improve air quality monitoring",
				"Enhance hygiene practices",
				"Prepare healthcare capacity",
			},
		},
		{
			Disease:        "Gastroenteritis",
			Probability:    0.45,
			Confidence:     0.68,
			Severity:       catalog.RiskMedium,
			EstimatedCases: 600,
			PeakDate:       "2024-09-18",
			RiskFactors:    []string{"Water contamination", "Food safety issues", "Poor sanitation"},
			PreventiveMeasures: []string{
				"Improve water quality testing",
				"Strengthen food safety regulations",
				"Enhance sanitation facilities",
				"Public health education",
			},
		},
	}
}
