package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lysyi3m/csl-import/app/feed"
	"github.com/lysyi3m/csl-import/app/options"
)

type FeedFetcher interface {
	Run(ctx context.Context, url string) ([]byte, error)
}

type FeedParser interface {
	Run(data []byte) ([]feed.RawItem, error)
}

type OptionsSource interface {
	Load() (options.Options, error)
}

// Report summarizes one pipeline run.
type Report struct {
	Total    int
	Inserted int
	Rejected int
	Failed   int
	Options  options.Options
}

type outcome int

const (
	outcomeInserted outcome = iota
	outcomeRejected
	outcomeFailed
)

// Pipeline fetches the feed once and ingests every item independently.
type Pipeline struct {
	fetcher     FeedFetcher
	parser      FeedParser
	normalizer  *feed.Normalizer
	gate        *Gate
	ingestor    *Ingestor
	options     OptionsSource
	feedURL     string
	workerCount int
	locks       *keyLock
}

func NewPipeline(fetcher FeedFetcher, parser FeedParser, normalizer *feed.Normalizer,
	gate *Gate, ingestor *Ingestor, opts OptionsSource, feedURL string, workerCount int) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		parser:      parser,
		normalizer:  normalizer,
		gate:        gate,
		ingestor:    ingestor,
		options:     opts,
		feedURL:     feedURL,
		workerCount: max(workerCount, 1),
		locks:       newKeyLock(),
	}
}

// Run executes one import. Only option loading, fetch and parse failures are
// returned; per-item failures are logged and counted in the report.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	opts, err := p.options.Load()
	if err != nil {
		return Report{}, fmt.Errorf("failed to load options: %w", err)
	}

	report := Report{Options: opts}

	data, err := p.fetcher.Run(ctx, p.feedURL)
	if err != nil {
		return report, err
	}

	items, err := p.parser.Run(data)
	if err != nil {
		return report, err
	}

	report.Total = len(items)
	if len(items) == 0 {
		slog.Info("Feed has no items", "url", p.feedURL)
		return report, nil
	}

	var inserted, rejected, failed atomic.Int64
	jobs := make(chan feed.RawItem)

	var wg sync.WaitGroup
	for i := 0; i < min(p.workerCount, len(items)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range jobs {
				switch p.processItem(ctx, raw, opts) {
				case outcomeInserted:
					inserted.Add(1)
				case outcomeRejected:
					rejected.Add(1)
				case outcomeFailed:
					failed.Add(1)
				}
			}
		}()
	}

	dispatched := 0
dispatch:
	for _, raw := range items {
		select {
		case jobs <- raw:
			dispatched++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	report.Inserted = int(inserted.Load())
	report.Rejected = int(rejected.Load())
	report.Failed = int(failed.Load()) + len(items) - dispatched

	if dispatched < len(items) {
		slog.Warn("Run cancelled before all items were processed", "dispatched", dispatched, "total", len(items), "error", ctx.Err())
	}

	return report, nil
}

func (p *Pipeline) processItem(ctx context.Context, raw feed.RawItem, opts options.Options) (result outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Item processing panicked", "guid", raw.GUID, "panic", r)
			result = outcomeFailed
		}
	}()

	rec := p.normalizer.Run(raw, opts)

	unlock := p.locks.Lock(rec.Title + "\x00" + rec.PublishedAt)
	defer unlock()

	if !p.gate.ShouldInsert(ctx, rec) {
		slog.Debug("Item rejected by insertion gate", "title", rec.Title, "published_at", rec.PublishedAt, "guid", rec.GUID)
		return outcomeRejected
	}

	item, err := p.ingestor.Run(ctx, rec, raw, opts)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, context.Canceled) {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "Failed to ingest item", "title", rec.Title, "guid", rec.GUID, "error", err)
		return outcomeFailed
	}

	slog.Debug("Item imported", "item_id", item.ID, "title", rec.Title, "tags", item.Tags)
	return outcomeInserted
}
