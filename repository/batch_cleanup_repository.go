package repository

import (
	"context"
	"fmt"

	"scorecard/database"

	"github.com/jackc/pgx/v5"
)

// BatchCleanupRepository deletes rows a batch wrote to derived tables
type BatchCleanupRepository struct {
	q Queryable
}

// NewBatchCleanupRepository creates a new batch cleanup repository
func NewBatchCleanupRepository(db *database.DB) *BatchCleanupRepository {
	return &BatchCleanupRepository{q: db.Pool}
}

func newBatchCleanupRepositoryWithTx(tx Queryable) *BatchCleanupRepository {
	return &BatchCleanupRepository{q: tx}
}

// DeleteBatchRows deletes rows tagged with batchID from each table.
// Tables that do not exist are skipped. It returns the deleted count per table.
func (r *BatchCleanupRepository) DeleteBatchRows(ctx context.Context, tables []string, batchID string) (map[string]int64, error) {
	deleted := make(map[string]int64, len(tables))
	for _, table := range tables {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if !exists {
			continue
		}

		stmt := fmt.Sprintf("DELETE FROM %s WHERE _batch_id = $1", pgx.Identifier{table}.Sanitize())
		tag, err := r.q.Exec(ctx, stmt, batchID)
		if err != nil {
			return nil, fmt.Errorf("failed to clean up %s: %w", table, err)
		}
		deleted[table] = tag.RowsAffected()
	}
	return deleted, nil
}
