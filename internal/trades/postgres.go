package trades

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"immersion/pkg/platform/sentinel"
)

// PostgresResolver reads the rome_appellations referential table
// (appellation_code TEXT PRIMARY KEY, rome_code TEXT).
type PostgresResolver struct {
	db *sql.DB
}

func NewPostgresResolver(db *sql.DB) *PostgresResolver {
	return &PostgresResolver{db: db}
}

func (r *PostgresResolver) RomeForAppellations(ctx context.Context, appellationCodes []string) (string, error) {
	if len(appellationCodes) == 0 {
		return "", fmt.Errorf("no appellation codes given: %w", sentinel.ErrNotFound)
	}

	var rome string
	err := r.db.QueryRowContext(ctx, `
		SELECT rome_code FROM rome_appellations
		WHERE appellation_code = ANY($1)
		LIMIT 1`,
		pq.Array(appellationCodes),
	).Scan(&rome)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no rome code for appellations %v: %w", appellationCodes, sentinel.ErrNotFound)
		}
		return "", fmt.Errorf("resolve rome for appellations: %w", err)
	}
	return rome, nil
}
