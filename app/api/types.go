package api

import (
	"time"

	"github.com/lysyi3m/csl-import/app/database"
	"github.com/lysyi3m/csl-import/app/tasks"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Handler struct {
	scheduler tasks.SchedulerInterface
	content   database.ContentRepository
	runs      database.RunRepository
}

type scheduleResponse struct {
	Job       string     `json:"job"`
	Scheduled bool       `json:"scheduled"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
	Running   bool       `json:"running"`
}

type importResponse struct {
	ID       string `json:"id"`
	Trigger  string `json:"trigger"`
	Total    int    `json:"total"`
	Inserted int    `json:"inserted"`
	Rejected int    `json:"rejected"`
	Failed   int    `json:"failed"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

type itemResponse struct {
	ID              int64               `json:"id"`
	Title           string              `json:"title"`
	Excerpt         string              `json:"excerpt"`
	AuthorID        int64               `json:"author_id"`
	PublishedAt     string              `json:"published_at"`
	GUID            string              `json:"guid"`
	Status          string              `json:"status"`
	FeaturedMediaID *int64              `json:"featured_media_id,omitempty"`
	Terms           map[string][]string `json:"terms"`
	CreatedAt       time.Time           `json:"created_at"`
}
