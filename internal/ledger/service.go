package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/RegionalHealth/RH-Backend/internal/metrics"
	"github.com/RegionalHealth/RH-Backend/internal/utils"
)

// Store persists ledger snapshots. The in-memory ledger stays
// authoritative; the store only survives restarts.
type Store interface {
	LoadResources(ctx context.Context) ([]Resource, error)
	SaveResources(ctx context.Context, resources []Resource) error
}

// Service serializes ledger mutations with their persistence so a failed
// save rolls the ledger back. Reads wait for an in-flight save, so they
// only see persisted state.
type Service struct {
	mu      sync.RWMutex
	ledger  *Ledger
	store   Store
	metrics metrics.Recorder
}

// NewService wires a ledger to an optional store and recorder.
func NewService(l *Ledger, store Store, rec metrics.Recorder) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{ledger: l, store: store, metrics: rec}
}

func (s *Service) Ledger() *Ledger { return s.ledger }

// Load restores the ledger from the store. When the store is empty and
// seed is non-empty, the seed is installed and written back.
func (s *Service) Load(ctx context.Context, seed []Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored []Resource
	if s.store != nil {
		var err error
		stored, err = s.store.LoadResources(ctx)
		if err != nil {
			return fmt.Errorf("loading resources: %w", err)
		}
	}
	if len(stored) > 0 {
		if err := s.ledger.Restore(stored); err != nil {
			return fmt.Errorf("restoring resources: %w", err)
		}
		log.Printf("[ledger] restored %d resources from store", len(stored))
		s.metrics.SetLedgerRecords(s.ledger.Len())
		return nil
	}
	if len(seed) == 0 {
		return nil
	}
	if err := s.ledger.Restore(seed); err != nil {
		return fmt.Errorf("seeding resources: %w", err)
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	log.Printf("[ledger] seeded %d resources", len(seed))
	s.metrics.SetLedgerRecords(s.ledger.Len())
	return nil
}

func (s *Service) save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveResources(ctx, s.ledger.Snapshot()); err != nil {
		return fmt.Errorf("saving resources: %w", err)
	}
	return nil
}

// mutate runs op and persists the result, restoring the prior snapshot
// when the save fails.
func (s *Service) mutate(ctx context.Context, name, target string, op func() (string, error)) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ledger.Snapshot()
	id, err := op()
	if err == nil {
		if err = s.save(ctx); err != nil {
			if rerr := s.ledger.Restore(before); rerr != nil {
				log.Printf("[ledger] rollback after failed save: %v", rerr)
			}
		}
	}
	if err == nil {
		actor, ok := utils.GetActorFromContext(ctx)
		if !ok {
			actor = "anonymous"
		}
		if id == "" {
			id = target
		}
		log.Printf("[ledger] %s %s by %s", name, id, actor)
	}
	s.metrics.Observe(ctx, name, err == nil, time.Since(start))
	s.metrics.SetLedgerRecords(s.ledger.Len())
	return err
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Resource, bool, error) {
	var (
		res    Resource
		merged bool
	)
	err := s.mutate(ctx, "ledger.create", "", func() (string, error) {
		var err error
		res, merged, err = s.ledger.Create(req)
		return res.ID, err
	})
	if err != nil {
		return Resource{}, false, err
	}
	return res, merged, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Resource, error) {
	var res Resource
	err := s.mutate(ctx, "ledger.update", id, func() (string, error) {
		var err error
		res, err = s.ledger.Update(id, req)
		return res.ID, err
	})
	if err != nil {
		return Resource{}, err
	}
	return res, nil
}

func (s *Service) Delete(ctx context.Context, id string) (Resource, error) {
	var res Resource
	err := s.mutate(ctx, "ledger.delete", id, func() (string, error) {
		var err error
		res, err = s.ledger.Delete(id)
		return res.ID, err
	})
	if err != nil {
		return Resource{}, err
	}
	return res, nil
}

// Get looks up one record.
func (s *Service) Get(ctx context.Context, id string) (Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Get(id)
}

func (s *Service) Query(ctx context.Context, f Filter) (Result, error) {
	start := time.Now()
	s.mu.RLock()
	res, err := s.ledger.Query(f)
	s.mu.RUnlock()
	s.metrics.Observe(ctx, "ledger.query", err == nil, time.Since(start))
	return res, err
}
