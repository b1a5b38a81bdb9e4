package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var _ ScheduleRepository = (*ScheduleRepo)(nil)

type ScheduleRepo struct {
	db *DB
}

func NewScheduleRepository(db *DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// GetSchedule returns nil when the job has no pending run.
func (r *ScheduleRepo) GetSchedule(ctx context.Context, jobName string) (*Schedule, error) {
	var schedule Schedule
	err := r.db.GetContext(ctx, &schedule, `
		SELECT job_name, next_run_at, updated_at FROM schedules WHERE job_name = ?
	`, jobName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	schedule.NextRunAt = schedule.NextRunAt.UTC()
	schedule.UpdatedAt = schedule.UpdatedAt.UTC()

	return &schedule, nil
}

// SaveSchedule replaces any pending run of the job.
func (r *ScheduleRepo) SaveSchedule(ctx context.Context, schedule Schedule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules (job_name, next_run_at, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (job_name) DO UPDATE SET
			next_run_at = excluded.next_run_at,
			updated_at = excluded.updated_at
	`, schedule.JobName, schedule.NextRunAt.UTC(), schedule.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

func (r *ScheduleRepo) DeleteSchedule(ctx context.Context, jobName string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE job_name = ?", jobName)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}
