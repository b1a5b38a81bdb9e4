package database

import (
	"context"
	"fmt"
)

var _ RunRepository = (*RunRepo)(nil)

// RunRepo keeps the history of import runs.
type RunRepo struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) CreateRun(ctx context.Context, run ImportRun) error {
	run.StartedAt = run.StartedAt.UTC()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO import_runs (id, triggered_by, status, started_at)
		VALUES (:id, :triggered_by, :status, :started_at)
	`, run)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

func (r *RunRepo) FinishRun(ctx context.Context, run ImportRun) error {
	if run.FinishedAt != nil {
		finished := run.FinishedAt.UTC()
		run.FinishedAt = &finished
	}
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE import_runs
		SET status = :status, finished_at = :finished_at, total = :total,
		    inserted = :inserted, rejected = :rejected, failed = :failed, error = :error
		WHERE id = :id
	`, run)
	if err != nil {
		return fmt.Errorf("failed to finish import run: %w", err)
	}
	return nil
}

func (r *RunRepo) ListRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	runs := []ImportRun{}
	err := r.db.SelectContext(ctx, &runs, `
		SELECT id, triggered_by, status, started_at, finished_at, total,
		       inserted, rejected, failed, error
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	return runs, nil
}
