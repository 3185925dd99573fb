package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"college-predictor/internal/models"
)

// Querier runs read queries. *DB satisfies it.
type Querier interface {
	QueryContext(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// CutoffRepository reads cutoff rows.
type CutoffRepository struct {
	db    Querier
	table string
}

// NewCutoffRepository creates a new cutoff repository over table.
func NewCutoffRepository(db Querier, table string) *CutoffRepository {
	if table == "" {
		table = "cutoffs"
	}
	return &CutoffRepository{db: db, table: table}
}

// Table returns the table name the repository reads.
func (r *CutoffRepository) Table() string {
	return r.table
}

// ListAll retrieves every cutoff row in a stable order.
func (r *CutoffRepository) ListAll(ctx context.Context) ([]models.Record, error) {
	query := `
		SELECT college_name, branch, category, rank, percentile
		FROM ` + pgx.Identifier{r.table}.Sanitize() + `
		ORDER BY college_name, branch, category`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cutoffs: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Record])
	if err != nil {
		return nil, fmt.Errorf("failed to scan cutoffs: %w", err)
	}

	return records, nil
}
