package executor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"immersion/internal/apiconsumer"
	"immersion/internal/establishment/models"
	"immersion/internal/search/executor"
	"immersion/internal/search/executor/mocks"
	"immersion/internal/search/ports"
	"immersion/internal/search/telemetry"
	"immersion/pkg/geo"
	"immersion/pkg/platform/sentinel"
	"immersion/pkg/requestcontext"
)

type ExecutorSuite struct {
	suite.Suite

	ctrl      *gomock.Controller
	local     *mocks.MockLocalSearcher
	gateway   *mocks.MockExternalOfferGateway
	deletions *mocks.MockDeletionRegistry
	resolver  *mocks.MockTradeResolver
	telemetry *telemetry.InMemory

	executor *executor.Executor
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorSuite))
}

func (s *ExecutorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.local = mocks.NewMockLocalSearcher(s.ctrl)
	s.gateway = mocks.NewMockExternalOfferGateway(s.ctrl)
	s.deletions = mocks.NewMockDeletionRegistry(s.ctrl)
	s.resolver = mocks.NewMockTradeResolver(s.ctrl)
	s.telemetry = telemetry.NewInMemory()

	exec, err := executor.New(
		s.local, s.gateway, s.deletions, s.telemetry, s.resolver,
		executor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
	s.executor = exec
}

func (s *ExecutorSuite) TestNewRequiresAllDependencies() {
	sink := telemetry.NewInMemory()

	tests := []struct {
		name string
		call func() (*executor.Executor, error)
	}{
		{"nil local searcher", func() (*executor.Executor, error) {
			return executor.New(nil, s.gateway, s.deletions, sink, s.resolver)
		}},
		{"nil gateway", func() (*executor.Executor, error) {
			return executor.New(s.local, nil, s.deletions, sink, s.resolver)
		}},
		{"nil deletion registry", func() (*executor.Executor, error) {
			return executor.New(s.local, s.gateway, nil, sink, s.resolver)
		}},
		{"nil telemetry sink", func() (*executor.Executor, error) {
			return executor.New(s.local, s.gateway, s.deletions, nil, s.resolver)
		}},
		{"nil trade resolver", func() (*executor.Executor, error) {
			return executor.New(s.local, s.gateway, s.deletions, sink, nil)
		}},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			exec, err := tc.call()
			s.Error(err)
			s.Nil(exec)
		})
	}
}

func baseQuery() executor.Query {
	return executor.Query{
		Latitude:         48.8531,
		Longitude:        2.34999,
		DistanceKm:       10,
		AppellationCodes: []string{"12694"},
		RomeCode:         "D1102",
	}
}

func localResult(siret string, searchable bool) models.StoreSearchResult {
	distance := 250
	return models.StoreSearchResult{
		SearchResult: models.SearchResult{
			Siret:                siret,
			Name:                 "Boulangerie du Coin",
			RomeCode:             "D1102",
			RomeLabel:            "Boulangerie",
			Position:             geo.Coordinate{Lat: 48.85, Lon: 2.35},
			DistanceMeters:       &distance,
			VoluntaryToImmersion: true,
			LocationID:           "loc-" + siret,
		},
		IsSearchable: searchable,
	}
}

func externalCompany(siret string) ports.ExternalCompany {
	return ports.ExternalCompany{
		Siret:      siret,
		Name:       "Fournil Express",
		Address:    "4 rue des Moulins, 75001 Paris",
		Position:   geo.Coordinate{Lat: 48.86, Lon: 2.34},
		RomeCode:   "D1102",
		RomeLabel:  "Boulangerie",
		DistanceKm: 1.2,
		NafCode:    "1071C",
	}
}

func (s *ExecutorSuite) TestVoluntaryOnlySkipsGateway() {
	query := baseQuery()
	query.VoluntaryToImmersion = models.TriStateTrue

	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{localResult("11111111100001", true)}, nil)

	results, err := s.executor.Execute(context.Background(), query, nil)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("11111111100001", results[0].Siret)
	s.True(results[0].VoluntaryToImmersion)
}

func (s *ExecutorSuite) TestVoluntaryExcludedReturnsExternalOnly() {
	query := baseQuery()
	query.VoluntaryToImmersion = models.TriStateFalse

	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{localResult("11111111100001", true)}, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return([]ports.ExternalCompany{externalCompany("22222222200002")}, nil)
	s.deletions.EXPECT().AreDeleted(gomock.Any(), []string{"22222222200002"}).
		Return(map[string]bool{"22222222200002": false}, nil)

	results, err := s.executor.Execute(context.Background(), query, nil)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("22222222200002", results[0].Siret)
	s.False(results[0].VoluntaryToImmersion)
}

func (s *ExecutorSuite) TestLocalResultWinsSiretCollision() {
	shared := "33333333300003"

	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{localResult(shared, true)}, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return([]ports.ExternalCompany{externalCompany(shared)}, nil)
	s.deletions.EXPECT().AreDeleted(gomock.Any(), []string{shared}).
		Return(map[string]bool{shared: false}, nil)

	results, err := s.executor.Execute(context.Background(), baseQuery(), nil)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.True(results[0].VoluntaryToImmersion)
	s.Equal("loc-"+shared, results[0].LocationID)
}

func (s *ExecutorSuite) TestNotSearchableSuppressedFromBothSources() {
	throttled := "44444444400004"

	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{
			localResult(throttled, false),
			localResult("55555555500005", true),
		}, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return([]ports.ExternalCompany{externalCompany(throttled)}, nil)
	s.deletions.EXPECT().AreDeleted(gomock.Any(), []string{throttled}).
		Return(map[string]bool{throttled: false}, nil)

	results, err := s.executor.Execute(context.Background(), baseQuery(), nil)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("55555555500005", results[0].Siret)
}

func (s *ExecutorSuite) TestDeletedEstablishmentSuppressedFromExternal() {
	deleted := "66666666600006"

	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(nil, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return([]ports.ExternalCompany{
			externalCompany(deleted),
			externalCompany("77777777700007"),
		}, nil)
	s.deletions.EXPECT().AreDeleted(gomock.Any(), []string{deleted, "77777777700007"}).
		Return(map[string]bool{deleted: true, "77777777700007": false}, nil)

	results, err := s.executor.Execute(context.Background(), baseQuery(), nil)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("77777777700007", results[0].Siret)
}

func (s *ExecutorSuite) TestGatewayFailureDegradesToLocalResults() {
	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{localResult("11111111100001", true)}, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return(nil, sentinel.ErrUnavailable)

	results, err := s.executor.Execute(context.Background(), baseQuery(), nil)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("11111111100001", results[0].Siret)
}

func (s *ExecutorSuite) TestLocalFailureFailsTheSearch() {
	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection reset"))
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return(nil, nil).AnyTimes()

	results, err := s.executor.Execute(context.Background(), baseQuery(), nil)
	s.Error(err)
	s.Nil(results)
}

func (s *ExecutorSuite) TestDeletionRegistryFailureFailsTheSearch() {
	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(nil, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return([]ports.ExternalCompany{externalCompany("22222222200002")}, nil)
	s.deletions.EXPECT().AreDeleted(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("relation does not exist"))

	results, err := s.executor.Execute(context.Background(), baseQuery(), nil)
	s.Error(err)
	s.Nil(results)
}

func (s *ExecutorSuite) TestMergeKeepsLocalThenGatewayOrder() {
	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{
			localResult("11111111100001", true),
			localResult("11111111100002", true),
		}, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return([]ports.ExternalCompany{
			externalCompany("22222222200001"),
			externalCompany("22222222200002"),
		}, nil)
	s.deletions.EXPECT().AreDeleted(gomock.Any(), gomock.Any()).
		Return(map[string]bool{}, nil)

	results, err := s.executor.Execute(context.Background(), baseQuery(), nil)
	s.Require().NoError(err)
	s.Require().Len(results, 4)

	sirets := make([]string, len(results))
	for i, r := range results {
		sirets[i] = r.Siret
	}
	s.Equal([]string{"11111111100001", "11111111100002", "22222222200001", "22222222200002"}, sirets)
}

func (s *ExecutorSuite) TestResolverFillsMissingRomeCode() {
	query := baseQuery()
	query.RomeCode = ""

	s.resolver.EXPECT().RomeForAppellations(gomock.Any(), []string{"12694"}).
		Return("D1102", nil)
	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(nil, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), ports.CompanyQuery{
		RomeCode:   "D1102",
		Coordinate: geo.Coordinate{Lat: query.Latitude, Lon: query.Longitude},
		RadiusKm:   query.DistanceKm,
	}).Return([]ports.ExternalCompany{externalCompany("22222222200002")}, nil)
	s.deletions.EXPECT().AreDeleted(gomock.Any(), gomock.Any()).
		Return(map[string]bool{}, nil)

	results, err := s.executor.Execute(context.Background(), query, nil)
	s.Require().NoError(err)
	s.Len(results, 1)
}

func (s *ExecutorSuite) TestResolverFailureSkipsExternalBranch() {
	query := baseQuery()
	query.RomeCode = ""

	s.resolver.EXPECT().RomeForAppellations(gomock.Any(), []string{"12694"}).
		Return("", sentinel.ErrNotFound)
	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{localResult("11111111100001", true)}, nil)

	results, err := s.executor.Execute(context.Background(), query, nil)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("11111111100001", results[0].Siret)
}

func (s *ExecutorSuite) TestNoAppellationFilterSkipsGateway() {
	query := baseQuery()
	query.AppellationCodes = nil

	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{localResult("11111111100001", true)}, nil)

	results, err := s.executor.Execute(context.Background(), query, nil)
	s.Require().NoError(err)
	s.Len(results, 1)
}

func (s *ExecutorSuite) TestTelemetryRecordsLocalCount() {
	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{
			localResult("11111111100001", true),
			localResult("11111111100002", false),
		}, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	consumer := &apiconsumer.Consumer{ID: "consumer-1", Name: "partner-site"}
	_, err := s.executor.Execute(context.Background(), baseQuery(), consumer)
	s.Require().NoError(err)

	recorded := s.telemetry.Recorded()
	s.Require().Len(recorded, 1)
	s.NotEmpty(recorded[0].ID)
	s.Equal("partner-site", recorded[0].APIConsumerName)
	s.Equal(models.SortByDistance, recorded[0].SortedBy)
	// Raw local count, before searchability filtering.
	s.Equal(2, recorded[0].NumberOfResults)
}

func (s *ExecutorSuite) TestDuplicateExternalSiretsCollapse() {
	repeated := "22222222200001"

	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(nil, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return([]ports.ExternalCompany{
			externalCompany(repeated),
			externalCompany("22222222200002"),
			externalCompany(repeated),
		}, nil)
	s.deletions.EXPECT().AreDeleted(gomock.Any(), gomock.Any()).
		Return(map[string]bool{}, nil)

	results, err := s.executor.Execute(context.Background(), baseQuery(), nil)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(repeated, results[0].Siret)
	s.Equal("22222222200002", results[1].Siret)
}

func (s *ExecutorSuite) TestTelemetryUsesRequestScopedTime() {
	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(nil, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	madeAt := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), madeAt)

	_, err := s.executor.Execute(ctx, baseQuery(), nil)
	s.Require().NoError(err)

	recorded := s.telemetry.Recorded()
	s.Require().Len(recorded, 1)
	s.Equal(madeAt, recorded[0].MadeAt)
}

func (s *ExecutorSuite) TestTelemetryRecordsExternalCountWhenVoluntaryExcluded() {
	query := baseQuery()
	query.VoluntaryToImmersion = models.TriStateFalse

	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{localResult("11111111100001", true)}, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return([]ports.ExternalCompany{
			externalCompany("22222222200001"),
			externalCompany("22222222200002"),
			externalCompany("22222222200003"),
		}, nil)
	s.deletions.EXPECT().AreDeleted(gomock.Any(), gomock.Any()).
		Return(map[string]bool{}, nil)

	_, err := s.executor.Execute(context.Background(), query, nil)
	s.Require().NoError(err)

	recorded := s.telemetry.Recorded()
	s.Require().Len(recorded, 1)
	s.Equal(3, recorded[0].NumberOfResults)
}

func (s *ExecutorSuite) TestTelemetryFailureDoesNotFailTheSearch() {
	sink := mocks.NewMockTelemetrySink(s.ctrl)
	sink.EXPECT().Record(gomock.Any(), gomock.Any()).
		Return(errors.New("broker unreachable"))

	exec, err := executor.New(
		s.local, s.gateway, s.deletions, sink, s.resolver,
		executor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)

	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.StoreSearchResult{localResult("11111111100001", true)}, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	results, err := exec.Execute(context.Background(), baseQuery(), nil)
	s.Require().NoError(err)
	s.Len(results, 1)
}

func (s *ExecutorSuite) TestExternalDistanceConvertedToMeters() {
	s.local.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(nil, nil)
	s.gateway.EXPECT().SearchCompanies(gomock.Any(), gomock.Any()).
		Return([]ports.ExternalCompany{externalCompany("22222222200002")}, nil)
	s.deletions.EXPECT().AreDeleted(gomock.Any(), gomock.Any()).
		Return(map[string]bool{}, nil)

	results, err := s.executor.Execute(context.Background(), baseQuery(), nil)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Require().NotNil(results[0].DistanceMeters)
	s.Equal(1200, *results[0].DistanceMeters)
}
