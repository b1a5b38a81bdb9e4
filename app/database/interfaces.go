package database

import (
	"context"
)

// ContentRepository is the content store the importer writes into.
type ContentRepository interface {
	CreateContentItem(ctx context.Context, item NewContentItem) (int64, error)
	ContentItemExists(ctx context.Context, title, publishedAt string) (bool, error)
	AttachTerms(ctx context.Context, itemID int64, terms []string, taxonomy string) error
	SetFeaturedMedia(ctx context.Context, itemID int64, mediaID int64) error

	GetContentItem(ctx context.Context, itemID int64) (*ContentItem, error)
	ListContentItems(ctx context.Context, limit int) ([]ContentItem, error)
	GetTerms(ctx context.Context, itemID int64) (map[string][]string, error)
	GetContentItemCount(ctx context.Context) (int, error)
}

type ScheduleRepository interface {
	GetSchedule(ctx context.Context, jobName string) (*Schedule, error)
	SaveSchedule(ctx context.Context, schedule Schedule) error
	DeleteSchedule(ctx context.Context, jobName string) error
}

type RunRepository interface {
	CreateRun(ctx context.Context, run ImportRun) error
	FinishRun(ctx context.Context, run ImportRun) error
	ListRuns(ctx context.Context, limit int) ([]ImportRun, error)
}
