package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), version)

	return db
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)
}

func TestContentRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewContentRepository(newTestDB(t))

	exists, err := repo.ContentItemExists(ctx, "Week 1", "2024-01-01 12:00:00")
	require.NoError(t, err)
	assert.False(t, exists)

	id, err := repo.CreateContentItem(ctx, NewContentItem{
		Title:       "Week 1",
		Excerpt:     "Summary",
		Body:        "<p>Body</p>",
		AuthorID:    1,
		PublishedAt: "2024-01-01 12:00:00",
		GUID:        "csl-1",
		Status:      "published",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	exists, err = repo.ContentItemExists(ctx, "Week 1", "2024-01-01 12:00:00")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ContentItemExists(ctx, "Week 1", "2024-01-02 12:00:00")
	require.NoError(t, err)
	assert.False(t, exists, "same title with a different date is a distinct item")

	require.NoError(t, repo.AttachTerms(ctx, id, []string{"eSports", "StarCraft II"}, TaxonomyTag))
	require.NoError(t, repo.AttachTerms(ctx, id, []string{"eSports"}, TaxonomyTag))
	require.NoError(t, repo.AttachTerms(ctx, id, []string{"Collegiate Starleague"}, TaxonomyConference))
	require.NoError(t, repo.AttachTerms(ctx, id, nil, TaxonomySchool))

	terms, err := repo.GetTerms(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"StarCraft II", "eSports"}, terms[TaxonomyTag])
	assert.Equal(t, []string{"Collegiate Starleague"}, terms[TaxonomyConference])
	assert.Empty(t, terms[TaxonomySchool])

	require.NoError(t, repo.SetFeaturedMedia(ctx, id, 99))

	item, err := repo.GetContentItem(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Week 1", item.Title)
	require.NotNil(t, item.FeaturedMediaID)
	assert.Equal(t, int64(99), *item.FeaturedMediaID)

	count, err := repo.GetContentItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	items, err := repo.ListContentItems(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSetFeaturedMediaUnknownItem(t *testing.T) {
	repo := NewContentRepository(newTestDB(t))

	err := repo.SetFeaturedMedia(context.Background(), 404, 1)
	assert.Error(t, err)
}

func TestGetContentItemNotFound(t *testing.T) {
	repo := NewContentRepository(newTestDB(t))

	item, err := repo.GetContentItem(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestScheduleRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewScheduleRepository(newTestDB(t))

	schedule, err := repo.GetSchedule(ctx, "csl_import")
	require.NoError(t, err)
	assert.Nil(t, schedule)

	first := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveSchedule(ctx, Schedule{JobName: "csl_import", NextRunAt: first, UpdatedAt: first}))

	second := first.Add(20 * time.Minute)
	require.NoError(t, repo.SaveSchedule(ctx, Schedule{JobName: "csl_import", NextRunAt: second, UpdatedAt: first}))

	schedule, err = repo.GetSchedule(ctx, "csl_import")
	require.NoError(t, err)
	require.NotNil(t, schedule)
	assert.True(t, schedule.NextRunAt.Equal(second), "expected %v, got %v", second, schedule.NextRunAt)

	require.NoError(t, repo.DeleteSchedule(ctx, "csl_import"))

	schedule, err = repo.GetSchedule(ctx, "csl_import")
	require.NoError(t, err)
	assert.Nil(t, schedule)
}

func TestRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(newTestDB(t))

	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	run := ImportRun{ID: "run-1", TriggeredBy: "timer", Status: RunStatusRunning, StartedAt: started}
	require.NoError(t, repo.CreateRun(ctx, run))

	finished := started.Add(time.Minute)
	run.Status = RunStatusSucceeded
	run.FinishedAt = &finished
	run.Total = 3
	run.Inserted = 2
	run.Rejected = 1
	require.NoError(t, repo.FinishRun(ctx, run))

	runs, err := repo.ListRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunStatusSucceeded, runs[0].Status)
	assert.Equal(t, 2, runs[0].Inserted)
	require.NotNil(t, runs[0].FinishedAt)
	assert.True(t, runs[0].FinishedAt.Equal(finished))
}
