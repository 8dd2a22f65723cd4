// Package trades resolves fine-grained appellation codes to the broad rome
// trade codes used as the external gateway's filter key.
package trades

import (
	"context"
	"fmt"
	"sync"

	"immersion/pkg/platform/sentinel"
)

// InMemoryResolver serves a fixed appellation-to-rome mapping. Tests and
// local development seed it directly.
type InMemoryResolver struct {
	mu     sync.RWMutex
	byCode map[string]string
}

func NewInMemoryResolver() *InMemoryResolver {
	return &InMemoryResolver{byCode: make(map[string]string)}
}

// Add registers one appellation-to-rome mapping.
func (r *InMemoryResolver) Add(appellationCode, romeCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCode[appellationCode] = romeCode
}

// RomeForAppellations returns the trade code of the first appellation that
// resolves, or sentinel.ErrNotFound when none do.
func (r *InMemoryResolver) RomeForAppellations(_ context.Context, appellationCodes []string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, code := range appellationCodes {
		if rome, ok := r.byCode[code]; ok {
			return rome, nil
		}
	}
	return "", fmt.Errorf("no rome code for appellations %v: %w", appellationCodes, sentinel.ErrNotFound)
}
