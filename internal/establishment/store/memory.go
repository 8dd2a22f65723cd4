package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"immersion/internal/establishment/models"
	"immersion/pkg/platform/sentinel"
)

// InMemory keeps aggregates in a slice so insertion order survives, which
// the stable search sort relies on for tie-breaking. Constructed per test
// and injected; there is no process-wide instance.
type InMemory struct {
	mu         sync.RWMutex
	aggregates []models.EstablishmentAggregate
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) InsertAggregates(_ context.Context, aggregates []models.EstablishmentAggregate) error {
	for _, agg := range aggregates {
		if err := agg.Validate(); err != nil {
			return fmt.Errorf("insert aggregates: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregates = append(s.aggregates, aggregates...)
	return nil
}

func (s *InMemory) UpdateAggregate(_ context.Context, aggregate models.EstablishmentAggregate, now time.Time) error {
	if err := aggregate.Validate(); err != nil {
		return fmt.Errorf("update aggregate: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.aggregates {
		if existing.Establishment.Siret != aggregate.Establishment.Siret {
			continue
		}
		aggregate.Establishment.CreatedAt = existing.Establishment.CreatedAt
		aggregate.Establishment.UpdatedAt = now
		s.aggregates[i] = aggregate
		return nil
	}
	return fmt.Errorf("update aggregate %s: %w", aggregate.Establishment.Siret, sentinel.ErrNotFound)
}

func (s *InMemory) GetBySiret(_ context.Context, siret string) (models.EstablishmentAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, agg := range s.aggregates {
		if agg.Establishment.Siret == siret {
			return agg, nil
		}
	}
	return models.EstablishmentAggregate{}, fmt.Errorf("get aggregate %s: %w", siret, sentinel.ErrNotFound)
}

func (s *InMemory) Delete(_ context.Context, siret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.aggregates[:0]
	found := false
	for _, agg := range s.aggregates {
		if agg.Establishment.Siret == siret {
			found = true
			continue
		}
		kept = append(kept, agg)
	}
	s.aggregates = kept
	if !found {
		return fmt.Errorf("delete aggregate %s: %w", siret, sentinel.ErrNotFound)
	}
	return nil
}

func (s *InMemory) HasSiret(_ context.Context, siret string) (bool, error) {
	if siret == ConflictSiret {
		return false, fmt.Errorf("siret %s: %w", siret, sentinel.ErrConflict)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, agg := range s.aggregates {
		if agg.Establishment.Siret == siret {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) Search(_ context.Context, params models.SearchParams) ([]models.StoreSearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return searchAggregates(s.aggregates, params), nil
}
