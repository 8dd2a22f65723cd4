package store

import (
	"sort"
	"time"

	"immersion/internal/establishment/models"
	"immersion/pkg/geo"
)

// searchAggregates is the local search algorithm, shared by the in-memory
// and postgres stores so both rank and group results identically. Aggregates
// must be supplied in insertion order: sorting is stable and ties keep that
// order, which pins pagination in tests.
func searchAggregates(aggregates []models.EstablishmentAggregate, params models.SearchParams) []models.StoreSearchResult {
	type candidate struct {
		result      models.StoreSearchResult
		newestOffer time.Time
		distance    int
	}

	var candidates []candidate
	for _, agg := range aggregates {
		est := agg.Establishment
		if !est.IsOpen {
			continue
		}
		if !matchesAudience(est, params.SearchableBy) {
			continue
		}
		if len(est.Locations) == 0 {
			continue
		}

		// The first location is authoritative for distance and display.
		loc := est.Locations[0]
		distance := geo.DistanceMeters(params.Coordinate, loc.Position)
		if float64(distance) > params.RadiusKm*1000 {
			continue
		}

		for _, group := range groupOffersByRome(agg.Offers) {
			if !matchesTradeFilter(group, params) {
				continue
			}

			d := distance
			result := models.StoreSearchResult{
				SearchResult: models.SearchResult{
					Siret:                 est.Siret,
					Name:                  est.DisplayName(),
					RomeCode:              group.romeCode,
					RomeLabel:             group.romeLabel,
					Appellations:          group.appellations,
					NafCode:               est.NafCode,
					NumberOfEmployeeRange: est.NumberEmployeesRange,
					Address:               loc.Address.Format(),
					Position:              loc.Position,
					DistanceMeters:        &d,
					VoluntaryToImmersion:  true,
					Website:               est.Website,
					AdditionalInformation: est.AdditionalInformation,
					FitForDisabledWorkers: est.FitForDisabledWorkers,
					NextAvailabilityDate:  est.NextAvailabilityDate,
					LocationID:            loc.ID,
				},
				IsSearchable: est.IsSearchable,
			}
			if agg.Contact != nil {
				result.ContactMode = agg.Contact.Mode
			}
			candidates = append(candidates, candidate{
				result:      result,
				newestOffer: group.newestOffer,
				distance:    distance,
			})
		}
	}

	switch params.SortedBy {
	case models.SortByDate:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].newestOffer.After(candidates[j].newestOffer)
		})
	default:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].distance < candidates[j].distance
		})
	}

	max := params.MaxResults
	if max <= 0 || max > MaxResultsCeiling {
		max = MaxResultsCeiling
	}
	if len(candidates) > max {
		candidates = candidates[:max]
	}

	results := make([]models.StoreSearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = c.result
	}
	return results
}

func matchesAudience(est models.EstablishmentEntity, audience models.Audience) bool {
	switch audience {
	case models.AudienceStudents:
		return est.SearchableByStudents
	case models.AudienceJobSeekers:
		return est.SearchableByJobSeekers
	default:
		return true
	}
}

type romeGroup struct {
	romeCode     string
	romeLabel    string
	appellations []models.AppellationAndLabel
	codes        map[string]bool
	newestOffer  time.Time
}

// groupOffersByRome collapses an establishment's offers into one group per
// distinct trade code, preserving first-seen trade order.
func groupOffersByRome(offers []models.OfferEntity) []*romeGroup {
	var ordered []*romeGroup
	byRome := make(map[string]*romeGroup)
	for _, offer := range offers {
		group, ok := byRome[offer.RomeCode]
		if !ok {
			group = &romeGroup{
				romeCode:  offer.RomeCode,
				romeLabel: offer.RomeLabel,
				codes:     make(map[string]bool),
			}
			byRome[offer.RomeCode] = group
			ordered = append(ordered, group)
		}
		if offer.AppellationCode != "" && !group.codes[offer.AppellationCode] {
			group.codes[offer.AppellationCode] = true
			group.appellations = append(group.appellations, models.AppellationAndLabel{
				AppellationCode:  offer.AppellationCode,
				AppellationLabel: offer.AppellationLabel,
			})
		}
		if offer.CreatedAt.After(group.newestOffer) {
			group.newestOffer = offer.CreatedAt
		}
	}
	return ordered
}

func matchesTradeFilter(group *romeGroup, params models.SearchParams) bool {
	if len(params.AppellationCodes) > 0 {
		for _, code := range params.AppellationCodes {
			if group.codes[code] {
				return true
			}
		}
		return false
	}
	if params.RomeCode != "" {
		return group.romeCode == params.RomeCode
	}
	return true
}
