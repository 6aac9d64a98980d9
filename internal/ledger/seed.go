package ledger

import (
	"fmt"

	"github.com/RegionalHealth/RH-Backend/internal/seeds"
	"github.com/goccy/go-yaml"
)

type seedDocument struct {
	Resources []Resource `yaml:"resources"`
}

// LoadSeed parses a YAML resource list.
func LoadSeed(data []byte) ([]Resource, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing resource YAML: %w", err)
	}
	return doc.Resources, nil
}

// DefaultSeed returns the embedded starting inventory.
func DefaultSeed() ([]Resource, error) {
	return LoadSeed(seeds.Resources())
}
