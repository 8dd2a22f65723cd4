// Package store owns establishment aggregates: the establishment row, its
// offers, and its optional contact, written and read as one unit.
package store

import (
	"context"
	"time"

	"immersion/internal/establishment/models"
)

// MaxResultsCeiling is the hard cap on results a single local search may
// return, whatever the caller asked for.
const MaxResultsCeiling = 100

// ConflictSiret is a reserved siret that HasSiret always reports as a
// conflict. Tests use it to simulate an "already registered" race without
// needing a concurrent writer.
const ConflictSiret = "11111111111111"

// AggregateStore is the storage port for establishment aggregates. The
// Search method performs only the local half of a search; merging with the
// external gateway is the executor's job.
type AggregateStore interface {
	// InsertAggregates appends aggregates as-is. It does not deduplicate by
	// siret; duplicate insertion is a caller error surfaced by downstream
	// uniqueness checks.
	InsertAggregates(ctx context.Context, aggregates []models.EstablishmentAggregate) error

	// UpdateAggregate atomically replaces the establishment fields, the full
	// offer set, and the contact of an existing aggregate. Returns
	// sentinel.ErrNotFound if no aggregate with that siret exists.
	UpdateAggregate(ctx context.Context, aggregate models.EstablishmentAggregate, now time.Time) error

	// GetBySiret returns the aggregate for a siret, or sentinel.ErrNotFound.
	GetBySiret(ctx context.Context, siret string) (models.EstablishmentAggregate, error)

	// Delete removes an aggregate and cascades to its offers and contact.
	// Returns sentinel.ErrNotFound if the siret is absent.
	Delete(ctx context.Context, siret string) error

	// HasSiret reports whether a siret is registered. The reserved
	// ConflictSiret always returns sentinel.ErrConflict.
	HasSiret(ctx context.Context, siret string) (bool, error)

	// Search runs the local search: open establishments within radius,
	// audience-filtered, one result per distinct trade per establishment.
	Search(ctx context.Context, params models.SearchParams) ([]models.StoreSearchResult, error)
}
