package anomaly

import (
	"errors"
	"fmt"
	"time"

	"github.com/RegionalHealth/RH-Backend/internal/catalog"
	"github.com/RegionalHealth/RH-Backend/internal/seeds"
	"github.com/goccy/go-yaml"
)

var ErrInvalidRecord = errors.New("invalid anomaly record")

// Metrics carries the precomputed deviation of a flagged series.
type Metrics struct {
	Baseline  float64 `yaml:"baseline" json:"baseline"`
	Current   float64 `yaml:"current" json:"current"`
	Deviation float64 `yaml:"deviation" json:"deviation"`
}

type Record struct {
	ID             string            `yaml:"id" json:"id"`
	Type           string            `yaml:"type" json:"type"`
	Description    string            `yaml:"description" json:"description"`
	Location       string            `yaml:"location" json:"location"`
	StateID        string            `yaml:"state_id" json:"state_id"`
	DistrictID     string            `yaml:"district_id,omitempty" json:"district_id,omitempty"`
	Severity       catalog.RiskLevel `yaml:"severity" json:"severity"`
	Confidence     float64           `yaml:"confidence" json:"confidence"`
	DetectedAt     time.Time         `yaml:"detected_at" json:"detected_at"`
	Metrics        Metrics           `yaml:"metrics" json:"metrics"`
	PossibleCauses []string          `yaml:"possible_causes" json:"possible_causes"`
}

func (r Record) Validate() error {
	if r.ID == "" || r.Type == "" {
		return fmt.Errorf("%w: id and type are required", ErrInvalidRecord)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("%w: %s severity %q", ErrInvalidRecord, r.ID, r.Severity)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: %s confidence %v outside [0,1]", ErrInvalidRecord, r.ID, r.Confidence)
	}
	if r.DetectedAt.IsZero() {
		return fmt.Errorf("%w: %s missing detected_at", ErrInvalidRecord, r.ID)
	}
	return nil
}

type document struct {
	Anomalies []Record `yaml:"anomalies"`
}

// Load parses and validates a YAML anomaly catalog.
func Load(data []byte) ([]Record, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing anomaly YAML: %w", err)
	}
	for _, r := range doc.Anomalies {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return doc.Anomalies, nil
}

// Default loads the embedded anomaly catalog.
func Default() ([]Record, error) {
	return Load(seeds.Anomalies())
}
