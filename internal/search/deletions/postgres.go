package deletions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Postgres persists deletion marks in the deleted_establishments table
// (siret TEXT PRIMARY KEY, deleted_at TIMESTAMPTZ).
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) MarkDeleted(ctx context.Context, siret string, deletedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deleted_establishments (siret, deleted_at)
		VALUES ($1, $2)
		ON CONFLICT (siret) DO UPDATE SET deleted_at = EXCLUDED.deleted_at`,
		siret, deletedAt,
	)
	if err != nil {
		return fmt.Errorf("mark deleted %s: %w", siret, err)
	}
	return nil
}

// AreDeleted resolves the whole siret set in one round trip. Unknown sirets
// come back false.
func (s *Postgres) AreDeleted(ctx context.Context, sirets []string) (map[string]bool, error) {
	result := make(map[string]bool, len(sirets))
	if len(sirets) == 0 {
		return result, nil
	}
	for _, siret := range sirets {
		result[siret] = false
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT siret FROM deleted_establishments WHERE siret = ANY($1)`,
		pq.Array(sirets),
	)
	if err != nil {
		return nil, fmt.Errorf("query deleted sirets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var siret string
		if err := rows.Scan(&siret); err != nil {
			return nil, fmt.Errorf("scan deleted siret: %w", err)
		}
		result[siret] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted sirets: %w", err)
	}
	return result, nil
}
