// Package telemetry records every search query for analytics. Sinks are
// write-only: the search path never reads a SearchMade back.
package telemetry

import (
	"context"
	"sync"

	"immersion/internal/establishment/models"
)

type InMemory struct {
	mu       sync.RWMutex
	searches []models.SearchMade
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Record(_ context.Context, searchMade models.SearchMade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, searchMade)
	return nil
}

// Recorded returns a copy of everything recorded so far, for assertions.
func (s *InMemory) Recorded() []models.SearchMade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SearchMade{}, s.searches...)
}
