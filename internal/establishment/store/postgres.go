package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"immersion/internal/establishment/models"
	"immersion/pkg/platform/sentinel"
)

// Postgres is the durable aggregate store. Radius pre-filtering happens in
// SQL with the haversine formula; grouping, ranking, and truncation reuse the
// same searchAggregates function as the in-memory store so both back ends
// rank identically.
//
// Schema (see the integration test for DDL): establishments,
// establishment_locations, immersion_offers, establishment_contacts, with
// ON DELETE CASCADE from establishments to the owned tables.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) InsertAggregates(ctx context.Context, aggregates []models.EstablishmentAggregate) error {
	for _, agg := range aggregates {
		if err := agg.Validate(); err != nil {
			return fmt.Errorf("insert aggregates: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert aggregates: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, agg := range aggregates {
		if err := insertAggregateTx(ctx, tx, agg); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert aggregates: commit: %w", err)
	}
	return nil
}

func insertAggregateTx(ctx context.Context, tx *sql.Tx, agg models.EstablishmentAggregate) error {
	est := agg.Establishment
	_, err := tx.ExecContext(ctx, `
		INSERT INTO establishments (
			siret, name, customized_name, naf_code, naf_label,
			number_employees_range, is_open, is_searchable,
			searchable_by_students, searchable_by_job_seekers,
			max_contacts_per_week, website, additional_information,
			next_availability_date, fit_for_disabled_workers,
			created_at, updated_at, last_insee_check_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		est.Siret, est.Name, est.CustomizedName, est.NafCode, est.NafLabel,
		string(est.NumberEmployeesRange), est.IsOpen, est.IsSearchable,
		est.SearchableByStudents, est.SearchableByJobSeekers,
		est.MaxContactsPerWeek, est.Website, est.AdditionalInformation,
		est.NextAvailabilityDate, est.FitForDisabledWorkers,
		est.CreatedAt, est.UpdatedAt, est.LastInseeCheckDate,
	)
	if err != nil {
		return fmt.Errorf("insert establishment %s: %w", est.Siret, err)
	}
	if err := insertOwnedRowsTx(ctx, tx, agg); err != nil {
		return err
	}
	return nil
}

// insertOwnedRowsTx writes locations, offers, and contact for an aggregate
// whose establishment row already exists.
func insertOwnedRowsTx(ctx context.Context, tx *sql.Tx, agg models.EstablishmentAggregate) error {
	siret := agg.Establishment.Siret
	for i, loc := range agg.Establishment.Locations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO establishment_locations (
				id, siret, street_number_and_address, post_code, city,
				department_code, lat, lon, rank
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			loc.ID, siret, loc.Address.StreetNumberAndAddress, loc.Address.PostCode,
			loc.Address.City, loc.Address.DepartmentCode,
			loc.Position.Lat, loc.Position.Lon, i,
		)
		if err != nil {
			return fmt.Errorf("insert location for %s: %w", siret, err)
		}
	}
	for _, o := range agg.Offers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO immersion_offers (
				siret, rome_code, rome_label, appellation_code,
				appellation_label, score, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			siret, o.RomeCode, o.RomeLabel, o.AppellationCode,
			o.AppellationLabel, o.Score, o.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert offer for %s: %w", siret, err)
		}
	}
	if c := agg.Contact; c != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO establishment_contacts (
				id, siret, first_name, last_name, email, phone, job,
				contact_mode, copy_emails
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			c.ID, siret, c.FirstName, c.LastName, c.Email, c.Phone, c.Job,
			string(c.Mode), pq.Array(c.CopyEmails),
		)
		if err != nil {
			return fmt.Errorf("insert contact for %s: %w", siret, err)
		}
	}
	return nil
}

func (s *Postgres) UpdateAggregate(ctx context.Context, aggregate models.EstablishmentAggregate, now time.Time) error {
	if err := aggregate.Validate(); err != nil {
		return fmt.Errorf("update aggregate: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update aggregate: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	est := aggregate.Establishment
	res, err := tx.ExecContext(ctx, `
		UPDATE establishments SET
			name = $2, customized_name = $3, naf_code = $4, naf_label = $5,
			number_employees_range = $6, is_open = $7, is_searchable = $8,
			searchable_by_students = $9, searchable_by_job_seekers = $10,
			max_contacts_per_week = $11, website = $12,
			additional_information = $13, next_availability_date = $14,
			fit_for_disabled_workers = $15, updated_at = $16,
			last_insee_check_date = $17
		WHERE siret = $1`,
		est.Siret, est.Name, est.CustomizedName, est.NafCode, est.NafLabel,
		string(est.NumberEmployeesRange), est.IsOpen, est.IsSearchable,
		est.SearchableByStudents, est.SearchableByJobSeekers,
		est.MaxContactsPerWeek, est.Website, est.AdditionalInformation,
		est.NextAvailabilityDate, est.FitForDisabledWorkers, now,
		est.LastInseeCheckDate,
	)
	if err != nil {
		return fmt.Errorf("update establishment %s: %w", est.Siret, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update establishment %s: %w", est.Siret, err)
	}
	if affected == 0 {
		return fmt.Errorf("update establishment %s: %w", est.Siret, sentinel.ErrNotFound)
	}

	// Full replace of the owned rows keeps the aggregate write all-or-nothing.
	for _, table := range []string{"establishment_locations", "immersion_offers", "establishment_contacts"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE siret = $1`, table), est.Siret); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, est.Siret, err)
		}
	}
	if err := insertOwnedRowsTx(ctx, tx, aggregate); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update aggregate: commit: %w", err)
	}
	return nil
}

func (s *Postgres) GetBySiret(ctx context.Context, siret string) (models.EstablishmentAggregate, error) {
	aggs, err := s.loadAggregates(ctx, `WHERE e.siret = $1`, siret)
	if err != nil {
		return models.EstablishmentAggregate{}, err
	}
	if len(aggs) == 0 {
		return models.EstablishmentAggregate{}, fmt.Errorf("get aggregate %s: %w", siret, sentinel.ErrNotFound)
	}
	return aggs[0], nil
}

func (s *Postgres) Delete(ctx context.Context, siret string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM establishments WHERE siret = $1`, siret)
	if err != nil {
		return fmt.Errorf("delete aggregate %s: %w", siret, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete aggregate %s: %w", siret, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete aggregate %s: %w", siret, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) HasSiret(ctx context.Context, siret string) (bool, error) {
	if siret == ConflictSiret {
		return false, fmt.Errorf("siret %s: %w", siret, sentinel.ErrConflict)
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM establishments WHERE siret = $1`, siret).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("has siret %s: %w", siret, err)
	}
	return true, nil
}

func (s *Postgres) Search(ctx context.Context, params models.SearchParams) ([]models.StoreSearchResult, error) {
	where := `
		WHERE e.is_open
		AND e.siret IN (
			SELECT l.siret FROM establishment_locations l
			WHERE l.rank = 0
			AND 2 * 6371000 * asin(sqrt(
				pow(sin(radians(l.lat - $1) / 2), 2)
				+ cos(radians($1)) * cos(radians(l.lat))
				* pow(sin(radians(l.lon - $2) / 2), 2)
			)) <= $3 * 1000
		)`
	args := []any{params.Coordinate.Lat, params.Coordinate.Lon, params.RadiusKm}

	switch params.SearchableBy {
	case models.AudienceStudents:
		where += ` AND e.searchable_by_students`
	case models.AudienceJobSeekers:
		where += ` AND e.searchable_by_job_seekers`
	}

	aggs, err := s.loadAggregates(ctx, where, args...)
	if err != nil {
		return nil, fmt.Errorf("search establishments: %w", err)
	}
	return searchAggregates(aggs, params), nil
}

// loadAggregates hydrates full aggregates for the establishments selected by
// the given WHERE clause, in creation order so stable ranking ties match the
// in-memory store.
func (s *Postgres) loadAggregates(ctx context.Context, where string, args ...any) ([]models.EstablishmentAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.siret, e.name, e.customized_name, e.naf_code, e.naf_label,
			e.number_employees_range, e.is_open, e.is_searchable,
			e.searchable_by_students, e.searchable_by_job_seekers,
			e.max_contacts_per_week, e.website, e.additional_information,
			e.next_availability_date, e.fit_for_disabled_workers,
			e.created_at, e.updated_at, e.last_insee_check_date
		FROM establishments e `+where+`
		ORDER BY e.created_at, e.siret`, args...)
	if err != nil {
		return nil, fmt.Errorf("load establishments: %w", err)
	}
	defer rows.Close()

	var aggs []models.EstablishmentAggregate
	var sirets []string
	index := make(map[string]int)
	for rows.Next() {
		var est models.EstablishmentEntity
		var employeesRange string
		var nextAvailability, lastInseeCheck sql.NullTime
		if err := rows.Scan(
			&est.Siret, &est.Name, &est.CustomizedName, &est.NafCode, &est.NafLabel,
			&employeesRange, &est.IsOpen, &est.IsSearchable,
			&est.SearchableByStudents, &est.SearchableByJobSeekers,
			&est.MaxContactsPerWeek, &est.Website, &est.AdditionalInformation,
			&nextAvailability, &est.FitForDisabledWorkers,
			&est.CreatedAt, &est.UpdatedAt, &lastInseeCheck,
		); err != nil {
			return nil, fmt.Errorf("scan establishment: %w", err)
		}
		est.NumberEmployeesRange = models.NumberEmployeesRange(employeesRange)
		if nextAvailability.Valid {
			t := nextAvailability.Time
			est.NextAvailabilityDate = &t
		}
		if lastInseeCheck.Valid {
			t := lastInseeCheck.Time
			est.LastInseeCheckDate = &t
		}
		index[est.Siret] = len(aggs)
		sirets = append(sirets, est.Siret)
		aggs = append(aggs, models.EstablishmentAggregate{Establishment: est})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate establishments: %w", err)
	}
	if len(aggs) == 0 {
		return nil, nil
	}

	if err := s.loadLocations(ctx, sirets, index, aggs); err != nil {
		return nil, err
	}
	if err := s.loadOffers(ctx, sirets, index, aggs); err != nil {
		return nil, err
	}
	if err := s.loadContacts(ctx, sirets, index, aggs); err != nil {
		return nil, err
	}
	return aggs, nil
}

func (s *Postgres) loadLocations(ctx context.Context, sirets []string, index map[string]int, aggs []models.EstablishmentAggregate) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT siret, id, street_number_and_address, post_code, city,
			department_code, lat, lon
		FROM establishment_locations
		WHERE siret = ANY($1)
		ORDER BY rank`, pq.Array(sirets))
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var siret string
		var loc models.Location
		if err := rows.Scan(
			&siret, &loc.ID, &loc.Address.StreetNumberAndAddress,
			&loc.Address.PostCode, &loc.Address.City, &loc.Address.DepartmentCode,
			&loc.Position.Lat, &loc.Position.Lon,
		); err != nil {
			return fmt.Errorf("scan location: %w", err)
		}
		i := index[siret]
		aggs[i].Establishment.Locations = append(aggs[i].Establishment.Locations, loc)
	}
	return rows.Err()
}

func (s *Postgres) loadOffers(ctx context.Context, sirets []string, index map[string]int, aggs []models.EstablishmentAggregate) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT siret, rome_code, rome_label, appellation_code,
			appellation_label, score, created_at
		FROM immersion_offers
		WHERE siret = ANY($1)
		ORDER BY created_at`, pq.Array(sirets))
	if err != nil {
		return fmt.Errorf("load offers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.OfferEntity
		if err := rows.Scan(
			&o.Siret, &o.RomeCode, &o.RomeLabel, &o.AppellationCode,
			&o.AppellationLabel, &o.Score, &o.CreatedAt,
		); err != nil {
			return fmt.Errorf("scan offer: %w", err)
		}
		i := index[o.Siret]
		aggs[i].Offers = append(aggs[i].Offers, o)
	}
	return rows.Err()
}

func (s *Postgres) loadContacts(ctx context.Context, sirets []string, index map[string]int, aggs []models.EstablishmentAggregate) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT siret, id, first_name, last_name, email, phone, job,
			contact_mode, copy_emails
		FROM establishment_contacts
		WHERE siret = ANY($1)`, pq.Array(sirets))
	if err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var siret, mode string
		var c models.ContactEntity
		var copyEmails pq.StringArray
		if err := rows.Scan(
			&siret, &c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&c.Job, &mode, &copyEmails,
		); err != nil {
			return fmt.Errorf("scan contact: %w", err)
		}
		c.Mode = models.ContactMode(mode)
		c.CopyEmails = copyEmails
		i := index[siret]
		contact := c
		aggs[i].Contact = &contact
	}
	return rows.Err()
}
