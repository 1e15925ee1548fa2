package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scorecard/database"
	"scorecard/models"

	"github.com/jackc/pgx/v5"
)

// BatchRunRepository persists etl_runs and etl_load_stats
type BatchRunRepository struct {
	q Queryable
}

// NewBatchRunRepository creates a new batch run repository
func NewBatchRunRepository(db *database.DB) *BatchRunRepository {
	return &BatchRunRepository{q: db.Pool}
}

func newBatchRunRepositoryWithTx(tx Queryable) *BatchRunRepository {
	return &BatchRunRepository{q: tx}
}

// Upsert inserts a started run, or resets an existing one to started
func (r *BatchRunRepository) Upsert(ctx context.Context, batchID string, runDate time.Time) (*models.BatchRun, error) {
	query := `
		INSERT INTO etl_runs (batch_id, run_date, started_at, status)
		VALUES ($1, $2, clock_timestamp(), 'started')
		ON CONFLICT (batch_id) DO UPDATE
		SET run_date = EXCLUDED.run_date,
		    started_at = EXCLUDED.started_at,
		    ended_at = NULL,
		    status = 'started',
		    message = NULL
		RETURNING batch_id, run_date, started_at, ended_at, status, message
	`

	run, err := scanBatchRun(r.q.QueryRow(ctx, query, batchID, models.NormalizeRunDate(runDate)))
	if err != nil {
		return nil, fmt.Errorf("failed to start run %s: %w", batchID, err)
	}
	return run, nil
}

// Finish sets the terminal status of a started run.
// It reports false when no started run with that id exists.
func (r *BatchRunRepository) Finish(ctx context.Context, batchID string, status models.RunStatus, message string) (bool, error) {
	query := `
		UPDATE etl_runs
		SET ended_at = clock_timestamp(), status = $2, message = $3
		WHERE batch_id = $1 AND status = 'started'
	`

	tag, err := r.q.Exec(ctx, query, batchID, string(status), message)
	if err != nil {
		return false, fmt.Errorf("failed to end run %s: %w", batchID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID returns a run, or nil when it does not exist
func (r *BatchRunRepository) GetByID(ctx context.Context, batchID string) (*models.BatchRun, error) {
	query := `
		SELECT batch_id, run_date, started_at, ended_at, status, message
		FROM etl_runs
		WHERE batch_id = $1
	`

	run, err := scanBatchRun(r.q.QueryRow(ctx, query, batchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", batchID, err)
	}
	return run, nil
}

// ListByRunDate returns every run for a run date, most recent first
func (r *BatchRunRepository) ListByRunDate(ctx context.Context, runDate time.Time) ([]*models.BatchRun, error) {
	query := `
		SELECT batch_id, run_date, started_at, ended_at, status, message
		FROM etl_runs
		WHERE run_date = $1
		ORDER BY started_at DESC
	`

	rows, err := r.q.Query(ctx, query, models.NormalizeRunDate(runDate))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BatchRun
	for rows.Next() {
		run, err := scanBatchRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// InsertLoadStat appends one load stat row
func (r *BatchRunRepository) InsertLoadStat(ctx context.Context, batchID, tableName string, insertedRows int64) error {
	query := `
		INSERT INTO etl_load_stats (batch_id, table_name, inserted_rows, created_at)
		VALUES ($1, $2, $3, clock_timestamp())
	`

	if _, err := r.q.Exec(ctx, query, batchID, tableName, insertedRows); err != nil {
		return fmt.Errorf("failed to log load stat for %s: %w", tableName, err)
	}
	return nil
}

// ListLoadStats returns the load stats of a batch in insertion order
func (r *BatchRunRepository) ListLoadStats(ctx context.Context, batchID string) ([]*models.LoadStat, error) {
	query := `
		SELECT id, batch_id, table_name, inserted_rows, created_at
		FROM etl_load_stats
		WHERE batch_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list load stats: %w", err)
	}
	defer rows.Close()

	var stats []*models.LoadStat
	for rows.Next() {
		var s models.LoadStat
		if err := rows.Scan(&s.ID, &s.BatchID, &s.TableName, &s.InsertedRows, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan load stat: %w", err)
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

func scanBatchRun(row pgx.Row) (*models.BatchRun, error) {
	var run models.BatchRun
	var status string
	err := row.Scan(
		&run.BatchID,
		&run.RunDate,
		&run.StartedAt,
		&run.EndedAt,
		&status,
		&run.Message,
	)
	if err != nil {
		return nil, err
	}
	run.Status = models.RunStatus(status)
	return &run, nil
}
