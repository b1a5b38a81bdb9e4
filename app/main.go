package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/csl-import/app/api"
	"github.com/lysyi3m/csl-import/app/cfg"
	"github.com/lysyi3m/csl-import/app/database"
	"github.com/lysyi3m/csl-import/app/feed"
	"github.com/lysyi3m/csl-import/app/importer"
	"github.com/lysyi3m/csl-import/app/options"
	"github.com/lysyi3m/csl-import/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting CSL Import", "version", appCfg.Version, "feed", appCfg.FeedURL, "timezone", appCfg.Location.String())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Debug("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	contentRepo := database.NewContentRepository(db)
	scheduleRepo := database.NewScheduleRepository(db)
	runRepo := database.NewRunRepository(db)

	optionsLoader := options.NewLoader(appCfg.OptionsFile)

	var tagProvider importer.TagProvider
	if len(appCfg.ExtraTags) > 0 {
		tagProvider = importer.StaticTagProvider(appCfg.ExtraTags...)
	}

	pipeline := importer.NewPipeline(
		feed.NewFetcher(&http.Client{}, appCfg.UserAgent, appCfg.FetchTimeoutDuration()),
		feed.NewParser(),
		feed.NewNormalizer(appCfg.Location),
		importer.NewGate(contentRepo),
		importer.NewIngestor(contentRepo, tagProvider),
		optionsLoader,
		appCfg.FeedURL,
		appCfg.WorkerCount,
	)

	scheduler := tasks.NewScheduler(pipeline, optionsLoader, scheduleRepo, runRepo,
		appCfg.SchedulerIntervalDuration(), appCfg.RetryBackoffDuration())
	scheduler.Setup()
	defer scheduler.Stop()

	if err := activateIfUnscheduled(context.Background(), scheduler); err != nil {
		slog.Error("Failed to activate import schedule", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(scheduler, contentRepo, runRepo)
	server := api.NewServer(handler, appCfg.APIAccessKey, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: tasks.DefaultRunTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler and database are closed via defer
	slog.Info("Shutdown complete")
}

// activateIfUnscheduled keeps a pending run from a previous process.
func activateIfUnscheduled(ctx context.Context, scheduler tasks.SchedulerInterface) error {
	state, err := scheduler.State(ctx)
	if err != nil {
		return err
	}

	if state != nil {
		slog.Info("Import already scheduled", "job", tasks.JobName, "next_run_at", state.NextRunAt)
		return nil
	}

	if err := scheduler.Activate(ctx); err != nil {
		return err
	}

	state, err = scheduler.State(ctx)
	if err != nil {
		return err
	}
	if state != nil {
		slog.Info("Import activated", "job", tasks.JobName, "next_run_at", state.NextRunAt)
	}
	return nil
}
