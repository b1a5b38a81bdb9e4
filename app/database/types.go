package database

import (
	"time"
)

const (
	TaxonomyTag        = "post_tag"
	TaxonomyConference = "conference"
	TaxonomySchool     = "school"
)

// NewContentItem is the write model for a content item.
type NewContentItem struct {
	Title       string `db:"title"`
	Excerpt     string `db:"excerpt"`
	Body        string `db:"body"`
	AuthorID    int64  `db:"author_id"`
	PublishedAt string `db:"published_at"` // YYYY-MM-DD HH:MM:SS, site timezone
	GUID        string `db:"guid"`
	Status      string `db:"status"`
}

type ContentItem struct {
	ID              int64     `db:"id"`
	Title           string    `db:"title"`
	Excerpt         string    `db:"excerpt"`
	Body            string    `db:"body"`
	AuthorID        int64     `db:"author_id"`
	PublishedAt     string    `db:"published_at"`
	GUID            string    `db:"guid"`
	Status          string    `db:"status"`
	FeaturedMediaID *int64    `db:"featured_media_id"`
	CreatedAt       time.Time `db:"created_at"`
}

type Term struct {
	ItemID   int64  `db:"item_id"`
	Taxonomy string `db:"taxonomy"`
	Term     string `db:"term"`
}

// Schedule is the single pending run of a named job. A job without a row is
// unscheduled.
type Schedule struct {
	JobName   string    `db:"job_name"`
	NextRunAt time.Time `db:"next_run_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

type ImportRun struct {
	ID          string     `db:"id" json:"id"`
	TriggeredBy string     `db:"triggered_by" json:"triggered_by"` // timer, manual
	Status      string     `db:"status" json:"status"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	FinishedAt  *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	Total       int        `db:"total" json:"total"`
	Inserted    int        `db:"inserted" json:"inserted"`
	Rejected    int        `db:"rejected" json:"rejected"`
	Failed      int        `db:"failed" json:"failed"`
	Error       string     `db:"error" json:"error,omitempty"`
}
