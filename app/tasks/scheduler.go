package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/csl-import/app/database"
	"github.com/lysyi3m/csl-import/app/importer"
	"github.com/lysyi3m/csl-import/app/options"
)

// JobName identifies the recurring import in the schedule store.
const JobName = "csl_import"

const DefaultRunTimeout = 5 * time.Minute

var ErrRunInProgress = errors.New("import run already in progress")

var _ SchedulerInterface = (*Scheduler)(nil)

// Scheduler owns the single timer entry of the import job. The entry lives in
// the schedule store; a poll loop fires the pipeline once it is due.
type Scheduler struct {
	runner       Runner
	options      importer.OptionsSource
	schedules    database.ScheduleRepository
	runs         database.RunRepository
	pollInterval time.Duration
	retryBackoff time.Duration
	runTimeout   time.Duration
	now          func() time.Time

	// scheduleMu serializes changes to the schedule entry so a deactivation
	// cannot be undone by a run rescheduling itself.
	scheduleMu sync.Mutex
	running    atomic.Bool
	setupOnce  sync.Once
	stopOnce   sync.Once
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func NewScheduler(runner Runner, opts importer.OptionsSource, schedules database.ScheduleRepository,
	runs database.RunRepository, pollInterval, retryBackoff time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:       runner,
		options:      opts,
		schedules:    schedules,
		runs:         runs,
		pollInterval: pollInterval,
		retryBackoff: retryBackoff,
		runTimeout:   DefaultRunTimeout,
		now:          func() time.Time { return time.Now().UTC() },
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Setup starts the poll loop. Calling it again is a no-op.
func (s *Scheduler) Setup() {
	s.setupOnce.Do(func() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()

			ticker := time.NewTicker(s.pollInterval)
			defer ticker.Stop()

			for {
				select {
				case <-s.ctx.Done():
					return
				case <-ticker.C:
					if err := s.Tick(s.ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
						slog.Error("Scheduled import failed", "job", JobName, "error", err)
					}
				}
			}
		}()

		slog.Debug("Scheduler set up", "job", JobName, "poll_interval", s.pollInterval.String())
	})
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

// ScheduleNext replaces any pending run with one at the given time. The store
// upserts the single entry, so a failed save leaves the previous entry intact.
func (s *Scheduler) ScheduleNext(ctx context.Context, at time.Time) error {
	s.scheduleMu.Lock()
	defer s.scheduleMu.Unlock()
	return s.scheduleNext(ctx, at)
}

func (s *Scheduler) scheduleNext(ctx context.Context, at time.Time) error {
	if err := s.schedules.SaveSchedule(ctx, database.Schedule{
		JobName:   JobName,
		NextRunAt: at.UTC(),
		UpdatedAt: s.now(),
	}); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", JobName, err)
	}

	slog.Debug("Import scheduled", "job", JobName, "next_run_at", at.UTC())
	return nil
}

func (s *Scheduler) Clear(ctx context.Context) error {
	s.scheduleMu.Lock()
	defer s.scheduleMu.Unlock()
	return s.clear(ctx)
}

func (s *Scheduler) clear(ctx context.Context) error {
	if err := s.schedules.DeleteSchedule(ctx, JobName); err != nil {
		return fmt.Errorf("failed to clear %s: %w", JobName, err)
	}
	return nil
}

// Activate schedules the next run one interval from now.
func (s *Scheduler) Activate(ctx context.Context) error {
	return s.ScheduleNext(ctx, s.now().Add(s.interval()))
}

func (s *Scheduler) Deactivate(ctx context.Context) error {
	s.scheduleMu.Lock()
	defer s.scheduleMu.Unlock()

	if err := s.clear(ctx); err != nil {
		return err
	}
	slog.Info("Import deactivated", "job", JobName)
	return nil
}

// State returns the pending run, or nil when the job is unscheduled.
func (s *Scheduler) State(ctx context.Context) (*database.Schedule, error) {
	schedule, err := s.schedules.GetSchedule(ctx, JobName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s schedule: %w", JobName, err)
	}
	return schedule, nil
}

// Tick runs the import when the pending run is due.
func (s *Scheduler) Tick(ctx context.Context) error {
	schedule, err := s.State(ctx)
	if err != nil {
		return err
	}

	if schedule == nil {
		return nil
	}

	if schedule.NextRunAt.After(s.now()) {
		return nil
	}

	_, err = s.execute(ctx, TriggerTimer)
	return err
}

// RunNow runs the import immediately. It returns ErrRunInProgress instead of
// queueing when another run is active.
func (s *Scheduler) RunNow(ctx context.Context) (*ImportTask, error) {
	return s.execute(ctx, TriggerManual)
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) execute(ctx context.Context, trigger Trigger) (*ImportTask, error) {
	if !s.running.CompareAndSwap(false, true) {
		slog.Debug("Import trigger dropped, run in progress", "trigger", string(trigger))
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	task := NewImportTask(trigger, s.runner, s.runs)
	task.Start()

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	runErr := task.Execute(runCtx)

	if err := s.reschedule(context.WithoutCancel(ctx), task, runErr); err != nil {
		slog.Error("Failed to reschedule import", "job", JobName, "error", err)
	}

	if runErr != nil {
		return task, fmt.Errorf("import run %s failed: %w", task.ID, runErr)
	}
	return task, nil
}

func (s *Scheduler) reschedule(ctx context.Context, task *ImportTask, runErr error) error {
	s.scheduleMu.Lock()
	defer s.scheduleMu.Unlock()

	schedule, err := s.State(ctx)
	if err != nil {
		return err
	}

	// Deactivated jobs stay unscheduled, even after a manual run.
	if schedule == nil {
		return nil
	}

	now := s.now()

	if runErr != nil {
		next := now.Add(s.retryBackoff)
		slog.Warn("Import failed, retry scheduled", "id", task.ID, "next_run_at", next, "error", runErr)
		return s.scheduleNext(ctx, next)
	}

	interval := task.Report.Options.Interval()
	if interval <= 0 {
		interval = s.interval()
	}
	return s.scheduleNext(ctx, now.Add(interval))
}

func (s *Scheduler) interval() time.Duration {
	opts, err := s.options.Load()
	if err != nil {
		slog.Warn("Failed to load options, using default interval", "error", err)
		return options.Defaults().Interval()
	}
	return opts.Interval()
}
