package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/csl-import/app/database"
	"github.com/lysyi3m/csl-import/app/importer"
)

// Runner executes one import. *importer.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context) (importer.Report, error)
}

// ImportTask is one pipeline run, recorded in the run history.
type ImportTask struct {
	Task
	Report importer.Report
	runner Runner
	runs   database.RunRepository
}

func NewImportTask(trigger Trigger, runner Runner, runs database.RunRepository) *ImportTask {
	return &ImportTask{
		Task:   NewTask(TaskTypeImport, trigger),
		runner: runner,
		runs:   runs,
	}
}

func (t *ImportTask) Execute(ctx context.Context) error {
	if t.StartedAt == nil {
		t.Start()
	}

	run := database.ImportRun{
		ID:          t.ID,
		TriggeredBy: string(t.Trigger),
		Status:      database.RunStatusRunning,
		StartedAt:   *t.StartedAt,
	}

	// Run history is best effort.
	if err := t.runs.CreateRun(ctx, run); err != nil {
		slog.Warn("Failed to record import run", "id", t.ID, "error", err)
	}

	report, err := t.runner.Run(ctx)
	t.Report = report

	finished := time.Now()
	run.FinishedAt = &finished
	run.Total = report.Total
	run.Inserted = report.Inserted
	run.Rejected = report.Rejected
	run.Failed = report.Failed
	run.Status = database.RunStatusSucceeded
	if err != nil {
		run.Status = database.RunStatusFailed
		run.Error = err.Error()
	}

	// The run context may already be done here.
	if finishErr := t.runs.FinishRun(context.WithoutCancel(ctx), run); finishErr != nil {
		slog.Warn("Failed to finish import run record", "id", t.ID, "error", finishErr)
	}

	if err != nil {
		return err
	}

	slog.Info("Import run completed",
		"id", t.ID,
		"trigger", string(t.Trigger),
		"total", report.Total,
		"inserted", report.Inserted,
		"rejected", report.Rejected,
		"failed", report.Failed,
		"duration", t.GetDuration().String())

	return nil
}
