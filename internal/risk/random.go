package risk

import (
	"math/rand/v2"
	"sync"
)

// Source supplies uniform values in [0, 1). Heuristic confidence and noise
// terms draw from it so callers can substitute a deterministic source.
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Global draws from the runtime's shared generator and is safe for
// concurrent use.
var Global Source = globalSource{}

// Fixed always returns the same value.
type Fixed float64

func (f Fixed) Float64() float64 { return float64(f) }

type seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a reproducible, goroutine-safe source.
func NewSeeded(seed uint64) Source {
	return &seeded{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}
