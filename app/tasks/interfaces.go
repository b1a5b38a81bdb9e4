package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/csl-import/app/database"
)

// SchedulerInterface is the import scheduler as seen by the process
// lifecycle and the admin API.
//
//	scheduler := NewScheduler(pipeline, optionsLoader, scheduleRepo, runRepo, poll, backoff)
//	scheduler.Setup()
//	defer scheduler.Stop()
//	scheduler.Activate(ctx)
type SchedulerInterface interface {
	Setup()
	Stop()
	ScheduleNext(ctx context.Context, at time.Time) error
	Clear(ctx context.Context) error
	Activate(ctx context.Context) error
	Deactivate(ctx context.Context) error
	State(ctx context.Context) (*database.Schedule, error)
	Tick(ctx context.Context) error
	RunNow(ctx context.Context) (*ImportTask, error)
	IsRunning() bool
}
