package importer

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/csl-import/app/feed"
)

type existenceChecker interface {
	ContentItemExists(ctx context.Context, title, publishedAt string) (bool, error)
}

// Gate decides whether a normalized record gets persisted. The title+date
// existence check is what keeps repeated runs over the same feed idempotent.
type Gate struct {
	store existenceChecker
}

func NewGate(store existenceChecker) *Gate {
	return &Gate{store: store}
}

func (g *Gate) ShouldInsert(ctx context.Context, rec feed.Record) bool {
	if rec.Title == "" {
		return false
	}

	if rec.Body == "" {
		return false
	}

	exists, err := g.store.ContentItemExists(ctx, rec.Title, rec.PublishedAt)
	if err != nil {
		// Without an answer we cannot rule out a duplicate.
		slog.Error("Existence check failed, skipping item", "title", rec.Title, "published_at", rec.PublishedAt, "error", err)
		return false
	}

	return !exists
}
