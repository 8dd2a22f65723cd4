package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"immersion/internal/establishment/models"
	"immersion/internal/establishment/store"
	"immersion/internal/search/deletions"
	"immersion/internal/search/executor"
	"immersion/internal/search/handler"
	"immersion/internal/search/ports"
	"immersion/internal/search/telemetry"
	"immersion/internal/trades"
	"immersion/pkg/geo"
)

// stubGateway returns a canned company list, or an error when set.
type stubGateway struct {
	companies []ports.ExternalCompany
	err       error
}

func (g *stubGateway) SearchCompanies(context.Context, ports.CompanyQuery) ([]ports.ExternalCompany, error) {
	return g.companies, g.err
}

type HandlerSuite struct {
	suite.Suite

	gateway *stubGateway
	router  *chi.Mux
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	aggregates := store.NewInMemory()
	s.Require().NoError(aggregates.InsertAggregates(context.Background(), []models.EstablishmentAggregate{
		{
			Establishment: models.EstablishmentEntity{
				Siret: "11111111100001",
				Name:  "Boulangerie du Marais",
				Locations: []models.Location{{
					ID:       "loc-1",
					Address:  models.Address{StreetNumberAndAddress: "12 rue des Rosiers", PostCode: "75004", City: "Paris"},
					Position: geo.Coordinate{Lat: 48.857, Lon: 2.36},
				}},
				IsOpen:                 true,
				IsSearchable:           true,
				SearchableByStudents:   true,
				SearchableByJobSeekers: true,
				CreatedAt:              time.Now(),
			},
			Offers: []models.OfferEntity{{
				Siret:            "11111111100001",
				RomeCode:         "D1102",
				RomeLabel:        "Boulangerie",
				AppellationCode:  "12694",
				AppellationLabel: "Boulanger",
				CreatedAt:        time.Now(),
			}},
		},
	}))

	resolver := trades.NewInMemoryResolver()
	resolver.Add("12694", "D1102")

	s.gateway = &stubGateway{}

	exec, err := executor.New(
		aggregates,
		s.gateway,
		deletions.NewInMemory(),
		telemetry.NewInMemory(),
		resolver,
	)
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	handler.New(exec, logger).Register(s.router)
}

func (s *HandlerSuite) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestSearchReturnsLocalResults() {
	rec := s.get("/v2/search?latitude=48.857&longitude=2.36&distanceKm=5")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))

	var results []models.SearchResult
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&results))
	s.Require().Len(results, 1)
	s.Equal("11111111100001", results[0].Siret)
	s.True(results[0].VoluntaryToImmersion)
}

func (s *HandlerSuite) TestSearchMergesExternalResults() {
	s.gateway.companies = []ports.ExternalCompany{{
		Siret:      "22222222200002",
		Name:       "Fournil Express",
		RomeCode:   "D1102",
		DistanceKm: 1.5,
	}}

	rec := s.get("/v2/search?latitude=48.857&longitude=2.36&distanceKm=5&appellationCodes=12694")

	s.Require().Equal(http.StatusOK, rec.Code)
	var results []models.SearchResult
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&results))
	s.Require().Len(results, 2)
	s.Equal("11111111100001", results[0].Siret)
	s.Equal("22222222200002", results[1].Siret)
}

func (s *HandlerSuite) TestMissingCoordinatesRejected() {
	rec := s.get("/v2/search?distanceKm=5")

	s.Require().Equal(http.StatusBadRequest, rec.Code)
	var body struct {
		Error      string   `json:"error"`
		Violations []string `json:"violations"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Equal("bad_request", body.Error)
	s.Contains(body.Violations, "latitude is required")
	s.Contains(body.Violations, "longitude is required")
}

func (s *HandlerSuite) TestMalformedNumberRejected() {
	rec := s.get("/v2/search?latitude=abc&longitude=2.36&distanceKm=5")

	s.Require().Equal(http.StatusBadRequest, rec.Code)
	var body struct {
		Violations []string `json:"violations"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Contains(body.Violations, "latitude must be a number")
}

func (s *HandlerSuite) TestSemanticViolationsSurfaceAsBadRequest() {
	rec := s.get("/v2/search?latitude=48.857&longitude=2.36&distanceKm=5&rome=nope")

	s.Require().Equal(http.StatusBadRequest, rec.Code)
	var body struct {
		Violations []string `json:"violations"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Require().Len(body.Violations, 1)
	s.Contains(body.Violations[0], "not a valid rome code")
}

func (s *HandlerSuite) TestGatewayFailureStillReturnsLocalResults() {
	s.gateway.err = context.DeadlineExceeded

	rec := s.get("/v2/search?latitude=48.857&longitude=2.36&distanceKm=5&appellationCodes=12694")

	s.Require().Equal(http.StatusOK, rec.Code)
	var results []models.SearchResult
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&results))
	s.Len(results, 1)
}

func (s *HandlerSuite) TestVoluntaryFalseFiltersLocal() {
	rec := s.get("/v2/search?latitude=48.857&longitude=2.36&distanceKm=5&voluntaryToImmersion=false")

	s.Require().Equal(http.StatusOK, rec.Code)
	var results []models.SearchResult
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&results))
	s.Empty(results)
}
