package models

import (
	"time"

	"immersion/pkg/geo"
)

// SortStrategy orders local search results.
type SortStrategy string

const (
	// SortByDistance orders by ascending distance from the reference point.
	SortByDistance SortStrategy = "distance"
	// SortByDate orders by most recently created offer first.
	SortByDate SortStrategy = "date"
)

// Audience restricts results to establishments open to a given public.
type Audience string

const (
	AudienceStudents   Audience = "students"
	AudienceJobSeekers Audience = "jobSeekers"
)

// TriState distinguishes an unset boolean filter from an explicit value.
// Absence and false must behave differently for the voluntary-to-immersion
// filter, so a bare *bool is deliberately avoided.
type TriState int

const (
	TriStateUnset TriState = iota
	TriStateTrue
	TriStateFalse
)

// TriStateOf converts an optional boolean coming off the wire.
func TriStateOf(b *bool) TriState {
	switch {
	case b == nil:
		return TriStateUnset
	case *b:
		return TriStateTrue
	default:
		return TriStateFalse
	}
}

// SearchParams is the local half of a search: what the aggregate store needs
// to produce its candidate results.
type SearchParams struct {
	Coordinate       geo.Coordinate
	RadiusKm         float64
	AppellationCodes []string
	RomeCode         string
	SearchableBy     Audience
	SortedBy         SortStrategy
	MaxResults       int
}

// AppellationAndLabel is a fine-grained job title observed under a trade.
type AppellationAndLabel struct {
	AppellationCode  string `json:"appellationCode"`
	AppellationLabel string `json:"appellationLabel"`
}

// SearchResult is the public projection returned to callers: one row per
// (establishment, trade) pair, merged across the local and external sources.
type SearchResult struct {
	Siret                 string                `json:"siret"`
	Name                  string                `json:"name"`
	RomeCode              string                `json:"rome"`
	RomeLabel             string                `json:"romeLabel"`
	Appellations          []AppellationAndLabel `json:"appellations"`
	NafCode               string                `json:"naf,omitempty"`
	NumberOfEmployeeRange NumberEmployeesRange  `json:"numberOfEmployeeRange,omitempty"`
	Address               string                `json:"address"`
	Position              geo.Coordinate        `json:"position"`
	DistanceMeters        *int                  `json:"distance_m,omitempty"`
	ContactMode           ContactMode           `json:"contactMode,omitempty"`
	VoluntaryToImmersion  bool                  `json:"voluntaryToImmersion"`
	Website               string                `json:"website,omitempty"`
	AdditionalInformation string                `json:"additionalInformation,omitempty"`
	FitForDisabledWorkers bool                  `json:"fitForDisabledWorkers,omitempty"`
	NextAvailabilityDate  *time.Time            `json:"nextAvailabilityDate,omitempty"`
	// URLOfPartner is set only for results sourced from the external gateway.
	URLOfPartner string `json:"urlOfPartner,omitempty"`
	// LocationID is set only for locally sourced results.
	LocationID string `json:"locationId,omitempty"`
}

// StoreSearchResult is the store-internal superset of SearchResult. The
// IsSearchable flag is needed by the merge step to suppress external
// duplicates of throttled establishments, and is projected away before
// results leave the search core.
type StoreSearchResult struct {
	SearchResult
	IsSearchable bool
}

// SearchMade captures one search invocation for analytics. It is written
// once through the telemetry sink and never read back by the search path.
type SearchMade struct {
	ID                   string
	Lat                  float64
	Lon                  float64
	DistanceKm           float64
	AppellationCodes     []string
	RomeCode             string
	SortedBy             SortStrategy
	VoluntaryToImmersion TriState
	SearchableBy         Audience
	APIConsumerName      string
	NumberOfResults      int
	MadeAt               time.Time
}
