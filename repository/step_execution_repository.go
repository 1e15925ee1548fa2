package repository

import (
	"context"
	"errors"
	"fmt"

	"scorecard/database"
	"scorecard/models"

	"github.com/jackc/pgx/v5"
)

// StepExecutionRepository persists pipeline_execution_log
type StepExecutionRepository struct {
	q Queryable
}

// NewStepExecutionRepository creates a new step execution repository
func NewStepExecutionRepository(db *database.DB) *StepExecutionRepository {
	return &StepExecutionRepository{q: db.Pool}
}

func newStepExecutionRepositoryWithTx(tx Queryable) *StepExecutionRepository {
	return &StepExecutionRepository{q: tx}
}

// Insert records a new started attempt of a step
func (r *StepExecutionRepository) Insert(ctx context.Context, batchID string, step models.Step) (*models.StepExecution, error) {
	query := `
		INSERT INTO pipeline_execution_log (batch_id, step_name, status, start_time, created_at)
		VALUES ($1, $2, 'started', clock_timestamp(), clock_timestamp())
		RETURNING id, batch_id, step_name, status, start_time, end_time, error_message, created_at
	`

	exec, err := scanStepExecution(r.q.QueryRow(ctx, query, batchID, string(step)))
	if err != nil {
		return nil, fmt.Errorf("failed to start step %s: %w", step, err)
	}
	return exec, nil
}

// CloseLatestOpen moves the most recent open attempt of a step to a terminal status.
// It returns nil when the step has no open attempt.
func (r *StepExecutionRepository) CloseLatestOpen(ctx context.Context, batchID string, step models.Step, status models.StepStatus, errorMessage *string) (*models.StepExecution, error) {
	query := `
		UPDATE pipeline_execution_log
		SET status = $3, end_time = clock_timestamp(), error_message = $4
		WHERE id = (
			SELECT id FROM pipeline_execution_log
			WHERE batch_id = $1 AND step_name = $2 AND status = 'started' AND end_time IS NULL
			ORDER BY start_time DESC, id DESC
			LIMIT 1
		)
		RETURNING id, batch_id, step_name, status, start_time, end_time, error_message, created_at
	`

	exec, err := scanStepExecution(r.q.QueryRow(ctx, query, batchID, string(step), string(status), errorMessage))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to close step %s: %w", step, err)
	}
	return exec, nil
}

// FirstFailed returns the earliest-started step whose latest attempt failed,
// or an empty step when there is none
func (r *StepExecutionRepository) FirstFailed(ctx context.Context, batchID string) (models.Step, error) {
	query := `
		SELECT step_name FROM (
			SELECT DISTINCT ON (step_name) step_name, status, start_time
			FROM pipeline_execution_log
			WHERE batch_id = $1
			ORDER BY step_name, start_time DESC, id DESC
		) latest
		WHERE status = 'failed'
		ORDER BY start_time, step_name
		LIMIT 1
	`

	var step string
	err := r.q.QueryRow(ctx, query, batchID).Scan(&step)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get failed step: %w", err)
	}
	return models.Step(step), nil
}

// Completed returns the distinct completed step names ordered by first start
func (r *StepExecutionRepository) Completed(ctx context.Context, batchID string) ([]models.Step, error) {
	query := `
		SELECT step_name
		FROM pipeline_execution_log
		WHERE batch_id = $1 AND status = 'completed'
		GROUP BY step_name
		ORDER BY MIN(start_time), step_name
	`

	rows, err := r.q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed steps: %w", err)
	}
	defer rows.Close()

	steps := []models.Step{}
	for rows.Next() {
		var step string
		if err := rows.Scan(&step); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, models.Step(step))
	}
	return steps, rows.Err()
}

// ListByBatch returns every attempt of a batch in start order
func (r *StepExecutionRepository) ListByBatch(ctx context.Context, batchID string) ([]*models.StepExecution, error) {
	query := `
		SELECT id, batch_id, step_name, status, start_time, end_time, error_message, created_at
		FROM pipeline_execution_log
		WHERE batch_id = $1
		ORDER BY start_time, id
	`

	rows, err := r.q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list step executions: %w", err)
	}
	defer rows.Close()

	var execs []*models.StepExecution
	for rows.Next() {
		exec, err := scanStepExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step execution: %w", err)
		}
		execs = append(execs, exec)
	}
	return execs, rows.Err()
}

func scanStepExecution(row pgx.Row) (*models.StepExecution, error) {
	var exec models.StepExecution
	var step, status string
	err := row.Scan(
		&exec.ID,
		&exec.BatchID,
		&step,
		&status,
		&exec.StartTime,
		&exec.EndTime,
		&exec.ErrorMessage,
		&exec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	exec.StepName = models.Step(step)
	exec.Status = models.StepStatus(status)
	return &exec, nil
}
