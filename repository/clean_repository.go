package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scorecard/database"
	"scorecard/models"

	"github.com/jackc/pgx/v5"
)

const (
	integerPattern = `^[+-]?[0-9]+(\.0*)?$`
	realPattern    = `^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`
)

// CleanRepository rebuilds the clean_* tables from staging
type CleanRepository struct {
	q Queryable
}

// NewCleanRepository creates a new clean repository
func NewCleanRepository(db *database.DB) *CleanRepository {
	return &CleanRepository{q: db.Pool}
}

func newCleanRepositoryWithTx(tx Queryable) *CleanRepository {
	return &CleanRepository{q: tx}
}

// rankedSQL selects the latest staged row per natural key for run date $1.
// Rows without a natural key cannot be deduplicated and are skipped.
func rankedSQL(entity models.Entity) string {
	key := pgx.Identifier{entity.Key}.Sanitize()
	return fmt.Sprintf(`
		SELECT s.*,
		       ROW_NUMBER() OVER (
		           PARTITION BY %[1]s
		           ORDER BY _ingested_at DESC, _batch_id COLLATE "C" DESC
		       ) AS rn
		FROM %[2]s s
		WHERE _run_date = $1 AND %[1]s IS NOT NULL AND %[1]s <> ''`,
		key, pgx.Identifier{entity.StagingTable()}.Sanitize())
}

func castExpr(col models.Column) string {
	ident := pgx.Identifier{col.Name}.Sanitize()
	switch col.Type {
	case models.ColumnInteger:
		return fmt.Sprintf("CAST(CAST(NULLIF(BTRIM(%s), '') AS NUMERIC) AS INTEGER)", ident)
	case models.ColumnReal:
		return fmt.Sprintf("CAST(NULLIF(BTRIM(%s), '') AS DOUBLE PRECISION)", ident)
	default:
		return ident
	}
}

// FindMalformed returns the first winning row whose numeric value cannot be cast,
// or nil when every winning value is blank or well formed
func (r *CleanRepository) FindMalformed(ctx context.Context, entity models.Entity, runDate time.Time) (*models.MalformedValueError, error) {
	numeric := entity.NumericColumns()
	if len(numeric) == 0 {
		return nil, nil
	}

	key := pgx.Identifier{entity.Key}.Sanitize()
	checks := make([]string, len(numeric))
	for i, col := range numeric {
		ident := pgx.Identifier{col.Name}.Sanitize()
		pattern := integerPattern
		if col.Type == models.ColumnReal {
			pattern = realPattern
		}
		checks[i] = fmt.Sprintf(
			"SELECT %[1]s AS bad_key, '%[2]s' AS bad_col, %[3]s AS bad_val FROM ranked WHERE rn = 1 AND NULLIF(BTRIM(%[3]s), '') IS NOT NULL AND BTRIM(%[3]s) !~ '%[4]s'",
			key, col.Name, ident, pattern)
	}

	query := fmt.Sprintf("WITH ranked AS (%s) %s ORDER BY bad_key, bad_col LIMIT 1",
		rankedSQL(entity), strings.Join(checks, " UNION ALL "))

	var bad models.MalformedValueError
	err := r.q.QueryRow(ctx, query, models.NormalizeRunDate(runDate)).
		Scan(&bad.Key, &bad.Column, &bad.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", entity.StagingTable(), err)
	}
	bad.Table = entity.StagingTable()
	return &bad, nil
}

// Rebuild replaces the run date's clean rows with the latest staged row per key
func (r *CleanRepository) Rebuild(ctx context.Context, entity models.Entity, runDate time.Time) (int64, error) {
	day := models.NormalizeRunDate(runDate)
	table := pgx.Identifier{entity.CleanTable()}.Sanitize()

	if _, err := r.q.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE _run_date = $1", table), day); err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", entity.CleanTable(), err)
	}

	targets := make([]string, 0, len(entity.Columns)+3)
	exprs := make([]string, 0, len(entity.Columns)+3)
	for _, col := range entity.Columns {
		targets = append(targets, pgx.Identifier{col.Name}.Sanitize())
		exprs = append(exprs, castExpr(col))
	}
	targets = append(targets, models.ColRunDate, models.ColIngestedAt, models.ColBatchID)
	exprs = append(exprs, models.ColRunDate, models.ColIngestedAt, models.ColBatchID)

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM (%s) ranked WHERE rn = 1",
		table, strings.Join(targets, ", "), strings.Join(exprs, ", "), rankedSQL(entity))

	tag, err := r.q.Exec(ctx, insert, day)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild %s: %w", entity.CleanTable(), err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of clean rows of an entity for a run date
func (r *CleanRepository) Count(ctx context.Context, entity models.Entity, runDate time.Time) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE _run_date = $1", pgx.Identifier{entity.CleanTable()}.Sanitize())

	var n int64
	if err := r.q.QueryRow(ctx, query, models.NormalizeRunDate(runDate)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", entity.CleanTable(), err)
	}
	return n, nil
}

// GetApplications returns the clean applications for a run date ordered by id
func (r *CleanRepository) GetApplications(ctx context.Context, runDate time.Time) ([]*models.CleanApplication, error) {
	query := `
		SELECT application_id, scorecard_version, decision, bureau_score,
		       product, channel, segment, _run_date, _ingested_at, _batch_id
		FROM clean_applications
		WHERE _run_date = $1
		ORDER BY application_id
	`

	rows, err := r.q.Query(ctx, query, models.NormalizeRunDate(runDate))
	if err != nil {
		return nil, fmt.Errorf("failed to get clean applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.CleanApplication
	for rows.Next() {
		var a models.CleanApplication
		err := rows.Scan(
			&a.ApplicationID,
			&a.ScorecardVersion,
			&a.Decision,
			&a.BureauScore,
			&a.Product,
			&a.Channel,
			&a.Segment,
			&a.RunDate,
			&a.IngestedAt,
			&a.BatchID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clean application: %w", err)
		}
		apps = append(apps, &a)
	}
	return apps, rows.Err()
}
