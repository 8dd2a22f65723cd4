// Package executor orchestrates a search across the local establishment
// store and the external company-matching gateway, reconciling both result
// lists with local precedence.
package executor

//go:generate mockgen -destination=mocks/mocks.go -package=mocks immersion/internal/search/ports LocalSearcher,ExternalOfferGateway,DeletionRegistry,TelemetrySink,TradeResolver

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"immersion/internal/apiconsumer"
	"immersion/internal/establishment/models"
	"immersion/internal/search/metrics"
	"immersion/internal/search/ports"
	"immersion/pkg/geo"
	"immersion/pkg/requestcontext"
)

// telemetryTimeout bounds how long a telemetry write may delay the response.
const telemetryTimeout = 2 * time.Second

// Query is the one operation the search core exposes to its callers.
type Query struct {
	Latitude             float64
	Longitude            float64
	DistanceKm           float64
	AppellationCodes     []string
	RomeCode             string
	SortedBy             models.SortStrategy
	VoluntaryToImmersion models.TriState
	SearchableBy         models.Audience
}

// Executor merges local and external search results. Local results are
// authoritative: an establishment present in both sources appears once, as
// its local record.
type Executor struct {
	local     ports.LocalSearcher
	gateway   ports.ExternalOfferGateway
	deletions ports.DeletionRegistry
	telemetry ports.TelemetrySink
	resolver  ports.TradeResolver
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Executor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

func New(
	local ports.LocalSearcher,
	gateway ports.ExternalOfferGateway,
	deletions ports.DeletionRegistry,
	telemetry ports.TelemetrySink,
	resolver ports.TradeResolver,
	opts ...Option,
) (*Executor, error) {
	if local == nil {
		return nil, fmt.Errorf("local searcher is required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("external offer gateway is required")
	}
	if deletions == nil {
		return nil, fmt.Errorf("deletion registry is required")
	}
	if telemetry == nil {
		return nil, fmt.Errorf("telemetry sink is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("trade resolver is required")
	}

	e := &Executor{
		local:     local,
		gateway:   gateway,
		deletions: deletions,
		telemetry: telemetry,
		resolver:  resolver,
		tracer:    otel.Tracer("immersion/search"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute validates the query, runs the local and external searches
// concurrently, and reconciles both lists. External failures degrade to
// fewer results; only local store failures and invalid queries surface as
// errors.
func (e *Executor) Execute(ctx context.Context, query Query, consumer *apiconsumer.Consumer) ([]models.SearchResult, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "SearchExecutor.Execute",
		trace.WithAttributes(
			attribute.Float64("search.radius_km", query.DistanceKm),
			attribute.String("search.sorted_by", string(query.sortedByOrDefault())),
		))
	defer span.End()

	searchMade := e.newSearchMade(ctx, query, consumer)
	coordinate := query.coordinate()

	// The external gateway only understands trade codes and knows nothing
	// about voluntary establishments: skip it without an appellation filter,
	// and when the caller explicitly wants voluntary results only.
	queryExternal := len(query.AppellationCodes) > 0 && query.VoluntaryToImmersion != models.TriStateTrue
	romeCode := query.RomeCode
	if queryExternal && romeCode == "" {
		resolved, err := e.resolver.RomeForAppellations(ctx, query.AppellationCodes)
		if err != nil {
			// A missing mapping only kills the external branch; local
			// results keep their value.
			e.log(ctx, slog.LevelWarn, "trade resolution failed, skipping external search", "error", err)
			queryExternal = false
		} else {
			romeCode = resolved
		}
	}

	var (
		localResults    []models.StoreSearchResult
		externalResults []ports.ExternalCompany
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := e.local.Search(gctx, models.SearchParams{
			Coordinate:       coordinate,
			RadiusKm:         query.DistanceKm,
			AppellationCodes: query.AppellationCodes,
			RomeCode:         query.RomeCode,
			SearchableBy:     query.SearchableBy,
			SortedBy:         query.sortedByOrDefault(),
		})
		if err != nil {
			return fmt.Errorf("local search: %w", err)
		}
		localResults = results
		return nil
	})
	if queryExternal {
		g.Go(func() error {
			companies, err := e.gateway.SearchCompanies(gctx, ports.CompanyQuery{
				RomeCode:   romeCode,
				Coordinate: coordinate,
				RadiusKm:   query.DistanceKm,
			})
			if err != nil {
				// Upstream unavailability must never fail the search.
				e.log(gctx, slog.LevelWarn, "external gateway failed, degrading to zero external results", "error", err)
				if e.metrics != nil {
					e.metrics.ExternalGatewayFailures.Inc()
				}
				return nil
			}
			externalResults = companies
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if query.VoluntaryToImmersion == models.TriStateFalse {
		searchMade.NumberOfResults = len(externalResults)
	} else {
		searchMade.NumberOfResults = len(localResults)
	}
	e.recordTelemetry(ctx, searchMade)

	merged, err := e.merge(ctx, query, localResults, externalResults)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("search.results", len(merged)))
	if e.metrics != nil {
		e.metrics.ObserveSearch(string(query.sortedByOrDefault()), len(merged))
	}
	return merged, nil
}

// merge reconciles the two result lists: local results first in their sorted
// order, then external results in gateway order, deduplicated by siret with
// local precedence, minus deleted and non-searchable establishments. The
// combined list is deliberately not re-sorted globally.
func (e *Executor) merge(
	ctx context.Context,
	query Query,
	localResults []models.StoreSearchResult,
	externalResults []ports.ExternalCompany,
) ([]models.SearchResult, error) {
	deleted, err := e.deletedSirets(ctx, externalResults)
	if err != nil {
		return nil, err
	}

	localSirets := make(map[string]bool, len(localResults))
	notSearchable := make(map[string]bool)
	for _, local := range localResults {
		localSirets[local.Siret] = true
		if !local.IsSearchable {
			notSearchable[local.Siret] = true
		}
	}

	merged := make([]models.SearchResult, 0, len(localResults)+len(externalResults))
	if query.VoluntaryToImmersion != models.TriStateFalse {
		for _, local := range localResults {
			if notSearchable[local.Siret] {
				continue
			}
			// Project away the store-internal searchable flag.
			merged = append(merged, local.SearchResult)
		}
	}

	// The gateway occasionally repeats a siret in one response; first
	// occurrence wins.
	seenExternal := make(map[string]bool, len(externalResults))
	for _, company := range externalResults {
		if seenExternal[company.Siret] {
			continue
		}
		seenExternal[company.Siret] = true
		if localSirets[company.Siret] && query.VoluntaryToImmersion != models.TriStateFalse {
			continue
		}
		if deleted[company.Siret] || notSearchable[company.Siret] {
			continue
		}
		merged = append(merged, externalCompanyToResult(company))
	}
	return merged, nil
}

func (e *Executor) deletedSirets(ctx context.Context, externalResults []ports.ExternalCompany) (map[string]bool, error) {
	if len(externalResults) == 0 {
		return nil, nil
	}
	sirets := make([]string, len(externalResults))
	for i, company := range externalResults {
		sirets[i] = company.Siret
	}
	deleted, err := e.deletions.AreDeleted(ctx, sirets)
	if err != nil {
		return nil, fmt.Errorf("deletion registry: %w", err)
	}
	return deleted, nil
}

// recordTelemetry writes the SearchMade with a bounded wait so analytics
// never delays nor fails the response.
func (e *Executor) recordTelemetry(ctx context.Context, searchMade models.SearchMade) {
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryTimeout)
	defer cancel()
	if err := e.telemetry.Record(recordCtx, searchMade); err != nil {
		e.log(ctx, slog.LevelError, "search telemetry write failed", "search_id", searchMade.ID, "error", err)
		if e.metrics != nil {
			e.metrics.TelemetryFailures.Inc()
		}
	}
}

func (e *Executor) newSearchMade(ctx context.Context, query Query, consumer *apiconsumer.Consumer) models.SearchMade {
	searchMade := models.SearchMade{
		ID:                   uuid.NewString(),
		Lat:                  query.Latitude,
		Lon:                  query.Longitude,
		DistanceKm:           query.DistanceKm,
		AppellationCodes:     query.AppellationCodes,
		RomeCode:             query.RomeCode,
		SortedBy:             query.sortedByOrDefault(),
		VoluntaryToImmersion: query.VoluntaryToImmersion,
		SearchableBy:         query.SearchableBy,
		MadeAt:               requestcontext.Now(ctx),
	}
	if consumer != nil {
		searchMade.APIConsumerName = consumer.Name
	}
	return searchMade
}

func (e *Executor) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if e.logger != nil {
		e.logger.Log(ctx, level, msg, args...)
	}
}

func (q Query) coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: q.Latitude, Lon: q.Longitude}
}

func (q Query) sortedByOrDefault() models.SortStrategy {
	if q.SortedBy == "" {
		return models.SortByDistance
	}
	return q.SortedBy
}

func externalCompanyToResult(company ports.ExternalCompany) models.SearchResult {
	distance := int(math.Round(company.DistanceKm * 1000))
	return models.SearchResult{
		Siret:                company.Siret,
		Name:                 company.Name,
		RomeCode:             company.RomeCode,
		RomeLabel:            company.RomeLabel,
		NafCode:              company.NafCode,
		Address:              company.Address,
		Position:             company.Position,
		DistanceMeters:       &distance,
		VoluntaryToImmersion: false,
		URLOfPartner:         company.URLOfPartner,
	}
}
