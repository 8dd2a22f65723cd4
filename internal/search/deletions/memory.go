// Package deletions tracks establishments explicitly removed from the
// directory. The search executor consults it to suppress removed sirets that
// would otherwise resurface through the external gateway.
package deletions

import (
	"context"
	"sync"
	"time"
)

type InMemory struct {
	mu      sync.RWMutex
	deleted map[string]time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{deleted: make(map[string]time.Time)}
}

// MarkDeleted registers a siret as removed. Re-marking refreshes the date.
func (s *InMemory) MarkDeleted(_ context.Context, siret string, deletedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[siret] = deletedAt
	return nil
}

func (s *InMemory) AreDeleted(_ context.Context, sirets []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]bool, len(sirets))
	for _, siret := range sirets {
		_, gone := s.deleted[siret]
		result[siret] = gone
	}
	return result, nil
}
