package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/lysyi3m/csl-import/app/database"
	"github.com/lysyi3m/csl-import/app/feed"
	"github.com/lysyi3m/csl-import/app/tasks"
)

func NewHandler(scheduler tasks.SchedulerInterface, content database.ContentRepository,
	runs database.RunRepository) *Handler {
	return &Handler{
		scheduler: scheduler,
		content:   content,
		runs:      runs,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"running":   h.scheduler.IsRunning(),
	}

	ctx := c.Request.Context()

	if count, err := h.content.GetContentItemCount(ctx); err == nil {
		health["items"] = count
	}

	if schedule, err := h.scheduler.State(ctx); err == nil && schedule != nil {
		health["next_run_at"] = schedule.NextRunAt
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIGetSchedule(c *gin.Context) {
	h.respondSchedule(c)
}

func (h *Handler) APIActivateSchedule(c *gin.Context) {
	if err := h.scheduler.Activate(c.Request.Context()); err != nil {
		slog.Error("Failed to activate import", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate import"})
		return
	}
	h.respondSchedule(c)
}

func (h *Handler) APIDeactivateSchedule(c *gin.Context) {
	if err := h.scheduler.Deactivate(c.Request.Context()); err != nil {
		slog.Error("Failed to deactivate import", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate import"})
		return
	}
	h.respondSchedule(c)
}

func (h *Handler) respondSchedule(c *gin.Context) {
	schedule, err := h.scheduler.State(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_schedule", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := scheduleResponse{
		Job:     tasks.JobName,
		Running: h.scheduler.IsRunning(),
	}
	if schedule != nil {
		response.Scheduled = true
		response.NextRunAt = &schedule.NextRunAt
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIRunImport(c *gin.Context) {
	// The run outlives a dropped client connection.
	task, err := h.scheduler.RunNow(context.WithoutCancel(c.Request.Context()))
	if errors.Is(err, tasks.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "Import run already in progress"})
		return
	}

	if task == nil {
		slog.Error("Manual import failed to start", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed to start"})
		return
	}

	response := importResponse{
		ID:       task.ID,
		Trigger:  string(task.Trigger),
		Total:    task.Report.Total,
		Inserted: task.Report.Inserted,
		Rejected: task.Report.Rejected,
		Failed:   task.Report.Failed,
		Duration: task.GetDuration().String(),
	}

	if err != nil {
		response.Error = err.Error()

		var fetchErr *feed.FetchError
		var parseErr *feed.ParseError
		if errors.As(err, &fetchErr) || errors.As(err, &parseErr) {
			c.JSON(http.StatusBadGateway, response)
			return
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIListItems(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.content.ListContentItems(ctx, listLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "list_items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := lo.Map(items, func(item database.ContentItem, _ int) itemResponse {
		terms, err := h.content.GetTerms(ctx, item.ID)
		if err != nil {
			slog.Warn("Failed to load item terms", "item_id", item.ID, "error", err)
			terms = map[string][]string{}
		}

		return itemResponse{
			ID:              item.ID,
			Title:           item.Title,
			Excerpt:         item.Excerpt,
			AuthorID:        item.AuthorID,
			PublishedAt:     item.PublishedAt,
			GUID:            item.GUID,
			Status:          item.Status,
			FeaturedMediaID: item.FeaturedMediaID,
			Terms:           terms,
			CreatedAt:       item.CreatedAt,
		}
	})

	total, err := h.content.GetContentItemCount(ctx)
	if err != nil {
		total = len(response)
	}

	c.JSON(http.StatusOK, gin.H{
		"items": response,
		"total": total,
	})
}

func (h *Handler) APIListRuns(c *gin.Context) {
	runs, err := h.runs.ListRuns(c.Request.Context(), listLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "list_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

func listLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}
