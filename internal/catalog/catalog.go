// Package catalog is the read-only registry of states, districts and
// their health metrics that the analytic engines query.
package catalog

import (
	"errors"
	"fmt"

	"github.com/RegionalHealth/RH-Backend/internal/seeds"
	"github.com/goccy/go-yaml"
)

var (
	ErrDuplicateID    = errors.New("duplicate location id")
	ErrOrphanDistrict = errors.New("district does not resolve to its state")
	ErrInvalidField   = errors.New("invalid location field")
)

// NationalLevel is the label used when no location filter is supplied.
const NationalLevel = "National Level"

type Catalog struct {
	states  []State
	stateIx map[string]int
	// district id -> state index
	districtIx map[string]int
}

type document struct {
	States []State `yaml:"states"`
}

// Load parses a YAML catalog document.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	return New(doc.States)
}

// Default loads the embedded catalog.
func Default() (*Catalog, error) {
	return Load(seeds.Catalog())
}

// New builds a catalog from states, stamping kind tags and parent ids and
// enforcing referential integrity.
func New(states []State) (*Catalog, error) {
	c := &Catalog{
		states:     make([]State, len(states)),
		stateIx:    make(map[string]int, len(states)),
		districtIx: make(map[string]int),
	}
	seen := map[string]struct{}{}
	for i, s := range states {
		s.Kind = KindState
		s.StateID = ""
		if err := checkLocation(s.Location); err != nil {
			return nil, err
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		seen[s.ID] = struct{}{}

		districts := make([]District, len(s.Districts))
		for j, d := range s.Districts {
			if d.StateID != "" && d.StateID != s.ID {
				return nil, fmt.Errorf("%w: %s claims state %s but is listed under %s", ErrOrphanDistrict, d.ID, d.StateID, s.ID)
			}
			d.Kind = KindDistrict
			d.StateID = s.ID
			d.Code = ""
			if err := checkLocation(d.Location); err != nil {
				return nil, err
			}
			if _, dup := seen[d.ID]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
			}
			seen[d.ID] = struct{}{}
			districts[j] = d
			c.districtIx[d.ID] = i
		}
		s.Districts = districts
		c.states[i] = s
		c.stateIx[s.ID] = i
	}
	return c, nil
}

func checkLocation(l Location) error {
	if l.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidField)
	}
	if l.Population <= 0 {
		return fmt.Errorf("%w: %s population must be positive", ErrInvalidField, l.ID)
	}
	if !l.RiskLevel.Valid() {
		return fmt.Errorf("%w: %s risk level %q", ErrInvalidField, l.ID, l.RiskLevel)
	}
	return nil
}

// States returns a copy of every state with its districts.
func (c *Catalog) States() []State {
	out := make([]State, len(c.states))
	for i, s := range c.states {
		out[i] = copyState(s)
	}
	return out
}

func (c *Catalog) State(id string) (State, bool) {
	i, ok := c.stateIx[id]
	if !ok {
		return State{}, false
	}
	return copyState(c.states[i]), true
}

// District finds a district. An empty stateID searches every state.
func (c *Catalog) District(stateID, districtID string) (District, bool) {
	i, ok := c.districtIx[districtID]
	if !ok {
		return District{}, false
	}
	if stateID != "" && c.states[i].ID != stateID {
		return District{}, false
	}
	for _, d := range c.states[i].Districts {
		if d.ID == districtID {
			return d, true
		}
	}
	return District{}, false
}

// Resolve picks the most specific known location for the filter pair:
// the district when it exists under the state, otherwise the state.
// ok is false when neither resolves, which callers treat as the national
// aggregate.
func (c *Catalog) Resolve(stateID, districtID string) (Location, bool) {
	if districtID != "" {
		if d, ok := c.District(stateID, districtID); ok {
			return d.Location, true
		}
	}
	if stateID != "" {
		if s, ok := c.State(stateID); ok {
			return s.Location, true
		}
	}
	return Location{}, false
}

// LocationName renders the display label for a filter pair.
func (c *Catalog) LocationName(stateID, districtID string) string {
	if districtID != "" {
		d, ok := c.District(stateID, districtID)
		if !ok {
			return "Unknown District"
		}
		s := c.states[c.stateIx[d.StateID]]
		return d.Name + ", " + s.Name
	}
	if stateID != "" {
		s, ok := c.State(stateID)
		if !ok {
			return "Unknown State"
		}
		return s.Name
	}
	return NationalLevel
}

// Locations flattens the catalog: each state followed by its districts.
func (c *Catalog) Locations() []Location {
	var out []Location
	for _, s := range c.states {
		out = append(out, s.Location)
		for _, d := range s.Districts {
			out = append(out, d.Location)
		}
	}
	return out
}

func copyState(s State) State {
	ds := make([]District, len(s.Districts))
	copy(ds, s.Districts)
	s.Districts = ds
	return s
}
