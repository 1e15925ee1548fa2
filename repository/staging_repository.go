package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scorecard/database"
	"scorecard/models"

	"github.com/jackc/pgx/v5"
)

// StagingRepository appends raw rows to the stg_* tables
type StagingRepository struct {
	q Queryable
}

// NewStagingRepository creates a new staging repository
func NewStagingRepository(db *database.DB) *StagingRepository {
	return &StagingRepository{q: db.Pool}
}

func newStagingRepositoryWithTx(tx Queryable) *StagingRepository {
	return &StagingRepository{q: tx}
}

// EnsureColumns adds any missing business column to the staging table as TEXT
func (r *StagingRepository) EnsureColumns(ctx context.Context, entity models.Entity, columns []string) error {
	table := pgx.Identifier{entity.StagingTable()}.Sanitize()
	for _, col := range columns {
		if models.IsLineageColumn(col) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s TEXT", table, pgx.Identifier{col}.Sanitize())
		if _, err := r.q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s to %s: %w", col, entity.StagingTable(), err)
		}
	}
	return nil
}

// Append copies the batch rows into the staging table with lineage attached.
// Lineage columns present in the source are ignored in favour of the given lineage.
func (r *StagingRepository) Append(ctx context.Context, batch *models.StagingBatch, lineage models.Lineage) (int64, error) {
	var business []int
	for i, col := range batch.Columns {
		if !models.IsLineageColumn(col) {
			business = append(business, i)
		}
	}

	columns := make([]string, 0, len(business)+len(models.LineageColumns))
	for _, i := range business {
		columns = append(columns, batch.Columns[i])
	}
	columns = append(columns, models.LineageColumns...)

	values := batch.Values()
	runDate := models.NormalizeRunDate(lineage.RunDate)
	source := pgx.CopyFromSlice(len(values), func(i int) ([]any, error) {
		row := make([]any, 0, len(columns))
		for _, j := range business {
			row = append(row, values[i][j])
		}
		return append(row, runDate, lineage.SourceFile, lineage.IngestedAt, lineage.BatchID), nil
	})

	n, err := r.q.CopyFrom(ctx, pgx.Identifier{batch.Entity.StagingTable()}, columns, source)
	if err != nil {
		return 0, fmt.Errorf("failed to append to %s: %w", batch.Entity.StagingTable(), err)
	}
	return n, nil
}

// CountByBatch returns the number of staged rows a batch appended to an entity
func (r *StagingRepository) CountByBatch(ctx context.Context, entity models.Entity, batchID string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE _batch_id = $1", pgx.Identifier{entity.StagingTable()}.Sanitize())

	var n int64
	if err := r.q.QueryRow(ctx, query, batchID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", entity.StagingTable(), err)
	}
	return n, nil
}

// ListByRunDate returns the staged rows of an entity for a run date as
// (column, value) pairs of the requested columns, in ingestion order.
// NULL values are returned as empty strings.
func (r *StagingRepository) ListByRunDate(ctx context.Context, entity models.Entity, runDate time.Time, columns []string) ([]models.StagingRow, error) {
	selects := make([]string, len(columns))
	for i, col := range columns {
		selects[i] = fmt.Sprintf("COALESCE(%s::text, '')", pgx.Identifier{col}.Sanitize())
	}
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE _run_date = $1 ORDER BY _ingested_at, _batch_id",
		strings.Join(selects, ", "),
		pgx.Identifier{entity.StagingTable()}.Sanitize(),
	)

	rows, err := r.q.Query(ctx, query, models.NormalizeRunDate(runDate))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", entity.StagingTable(), err)
	}
	defer rows.Close()

	var out []models.StagingRow
	for rows.Next() {
		vals := make([]string, len(columns))
		dest := make([]any, len(columns))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", entity.StagingTable(), err)
		}
		row := make(models.StagingRow, len(columns))
		for i, col := range columns {
			row[i] = models.Field{Column: col, Value: vals[i]}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
