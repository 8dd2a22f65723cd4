package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"immersion/internal/establishment/models"
)

// Postgres appends search telemetry to the searches_made table. The tri-state
// voluntary filter is stored as a nullable boolean: NULL for unset.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Record(ctx context.Context, searchMade models.SearchMade) error {
	var voluntary sql.NullBool
	switch searchMade.VoluntaryToImmersion {
	case models.TriStateTrue:
		voluntary = sql.NullBool{Bool: true, Valid: true}
	case models.TriStateFalse:
		voluntary = sql.NullBool{Bool: false, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO searches_made (
			id, lat, lon, distance_km, appellation_codes, rome_code,
			sorted_by, voluntary_to_immersion, searchable_by,
			api_consumer_name, number_of_results, made_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		searchMade.ID, searchMade.Lat, searchMade.Lon, searchMade.DistanceKm,
		pq.Array(searchMade.AppellationCodes), searchMade.RomeCode,
		string(searchMade.SortedBy), voluntary, string(searchMade.SearchableBy),
		searchMade.APIConsumerName, searchMade.NumberOfResults, searchMade.MadeAt,
	)
	if err != nil {
		return fmt.Errorf("record search made %s: %w", searchMade.ID, err)
	}
	return nil
}
