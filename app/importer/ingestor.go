package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/csl-import/app/database"
	"github.com/lysyi3m/csl-import/app/feed"
	"github.com/lysyi3m/csl-import/app/options"
)

var ErrNotPersisted = errors.New("content item not persisted")

// Item is a content item created by the Ingestor.
type Item struct {
	ID              int64
	Record          feed.Record
	Tags            []string
	FeaturedMediaID *int64
	AttachFailures  int
}

// Ingestor persists an accepted record and decorates it with taxonomy terms
// and featured media. Only the persist step can fail the item; attachment
// failures are logged and never undo the created item.
type Ingestor struct {
	store database.ContentRepository
	tags  TagProvider
}

func NewIngestor(store database.ContentRepository, tags TagProvider) *Ingestor {
	return &Ingestor{
		store: store,
		tags:  tags,
	}
}

func (i *Ingestor) Run(ctx context.Context, rec feed.Record, raw feed.RawItem, opts options.Options) (*Item, error) {
	id, err := i.store.CreateContentItem(ctx, database.NewContentItem{
		Title:       rec.Title,
		Excerpt:     rec.Excerpt,
		Body:        rec.Body,
		AuthorID:    rec.AuthorID,
		PublishedAt: rec.PublishedAt,
		GUID:        rec.GUID,
		Status:      rec.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	item := &Item{ID: id, Record: rec}

	item.Tags = resolveTags(i.tags, id, raw)
	i.attach(ctx, item, item.Tags, database.TaxonomyTag)
	i.attach(ctx, item, []string{ConferenceTerm}, database.TaxonomyConference)
	i.attach(ctx, item, []string{SchoolTerm}, database.TaxonomySchool)

	if opts.DefaultMediaID != nil {
		if err := i.store.SetFeaturedMedia(ctx, id, *opts.DefaultMediaID); err != nil {
			slog.Error("Failed to set featured media", "item_id", id, "media_id", *opts.DefaultMediaID, "error", err)
			item.AttachFailures++
		} else {
			item.FeaturedMediaID = opts.DefaultMediaID
		}
	}

	return item, nil
}

func (i *Ingestor) attach(ctx context.Context, item *Item, terms []string, taxonomy string) {
	if err := i.store.AttachTerms(ctx, item.ID, terms, taxonomy); err != nil {
		slog.Error("Failed to attach terms", "item_id", item.ID, "taxonomy", taxonomy, "terms", terms, "error", err)
		item.AttachFailures++
	}
}
