// Package ports defines the collaborator interfaces consumed by the search
// executor. Interfaces live here because several implementations exist per
// port (in-memory, postgres, external HTTP) and the executor must not depend
// on any of them directly.
package ports

import (
	"context"

	"immersion/internal/establishment/models"
	"immersion/pkg/geo"
)

// LocalSearcher is the slice of the aggregate store the executor needs: the
// local half of a search, returning the store-internal result superset.
type LocalSearcher interface {
	Search(ctx context.Context, params models.SearchParams) ([]models.StoreSearchResult, error)
}

// CompanyQuery is the request shape of the external company-matching service.
type CompanyQuery struct {
	RomeCode   string
	Coordinate geo.Coordinate
	RadiusKm   float64
}

// ExternalCompany is one candidate company returned by the external gateway.
// It carries no appellation and no contact detail.
type ExternalCompany struct {
	Siret        string
	Name         string
	Address      string
	Position     geo.Coordinate
	RomeCode     string
	RomeLabel    string
	DistanceKm   float64
	NafCode      string
	URLOfPartner string
}

// ExternalOfferGateway queries a third-party service for companies matching
// a trade code within a geo radius. The production adapter performs network
// I/O; callers must tolerate its failure without aborting the search.
type ExternalOfferGateway interface {
	SearchCompanies(ctx context.Context, query CompanyQuery) ([]ExternalCompany, error)
}

// DeletionRegistry tracks sirets explicitly removed from the directory so
// they do not reappear through the external gateway.
type DeletionRegistry interface {
	// AreDeleted reports deletion per siret. Empty input yields an empty
	// map; unknown sirets map to false, never an error.
	AreDeleted(ctx context.Context, sirets []string) (map[string]bool, error)
}

// TelemetrySink durably records every search query for analytics. Writes are
// best-effort from the caller's perspective but must always be attempted.
type TelemetrySink interface {
	Record(ctx context.Context, searchMade models.SearchMade) error
}

// TradeResolver maps fine-grained appellation codes to the single broad
// trade (rome) code the external gateway understands.
type TradeResolver interface {
	// RomeForAppellations returns sentinel.ErrNotFound when none of the
	// codes resolve to a trade code.
	RomeForAppellations(ctx context.Context, appellationCodes []string) (string, error)
}
