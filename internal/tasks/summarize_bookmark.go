package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
	"gorm.io/gorm"

	"github.com/linkmarkhq/linkmark/internal/entities"
	"github.com/linkmarkhq/linkmark/internal/summarize"
)

// SummaryStore provides the bookmark reads and writes the summarization
// task needs.
type SummaryStore interface {
	GetBookmarkByID(ctx context.Context, id string) (*entities.Bookmark, error)
	UpdateSummary(ctx context.Context, id string, summary string) error
}

// SummarizeBookmarkTask retries summarization for a bookmark whose inline
// summarization failed during ingestion.
type SummarizeBookmarkTask struct {
	BookmarkID string `json:"bookmark_id"`
}

// Config returns the queue configuration for summarization tasks.
func (t SummarizeBookmarkTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "summarize_bookmark",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SummarizeBookmarkProcessor creates a processor function for SummarizeBookmarkTask.
func SummarizeBookmarkProcessor(store SummaryStore, client summarize.Client) backlite.QueueProcessor[SummarizeBookmarkTask] {
	return func(ctx context.Context, task SummarizeBookmarkTask) error {
		if store == nil || client == nil {
			return fmt.Errorf("summarization task not configured")
		}

		bookmark, err := store.GetBookmarkByID(ctx, task.BookmarkID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted since the task was enqueued, nothing to do.
			log.Printf("[TASK] Bookmark %s no longer exists, skipping summarization", task.BookmarkID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load bookmark %s: %w", task.BookmarkID, err)
		}
		if bookmark.Summary != "" {
			return nil
		}

		summary, err := client.Summarize(ctx, bookmark.URL, bookmark.Title)
		if err != nil {
			return fmt.Errorf("summarize bookmark %s: %w", task.BookmarkID, err)
		}

		if err := store.UpdateSummary(ctx, bookmark.ID, summary); err != nil {
			return fmt.Errorf("store summary for %s: %w", task.BookmarkID, err)
		}

		log.Printf("[TASK] Summarized bookmark %s", task.BookmarkID)
		return nil
	}
}

// NewSummarizeBookmarkQueue creates a backlite queue for summarization tasks.
func NewSummarizeBookmarkQueue(store SummaryStore, client summarize.Client) backlite.Queue {
	return backlite.NewQueue(SummarizeBookmarkProcessor(store, client))
}

// RetryEnqueuer adapts the task client to the orchestrator's retry hook.
type RetryEnqueuer struct {
	client *Client
}

// NewRetryEnqueuer creates a RetryEnqueuer backed by the task client.
func NewRetryEnqueuer(client *Client) *RetryEnqueuer {
	return &RetryEnqueuer{client: client}
}

// EnqueueSummarize schedules an asynchronous summarization retry.
func (e *RetryEnqueuer) EnqueueSummarize(ctx context.Context, bookmarkID string) error {
	_, err := e.client.Add(SummarizeBookmarkTask{BookmarkID: bookmarkID}).Ctx(ctx).Save()
	return err
}
