// Package scheduler runs the periodic maintenance jobs: summary backfill
// for bookmarks whose summarization never completed, and orphan tag cleanup.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/linkmarkhq/linkmark/internal/config"
	"github.com/linkmarkhq/linkmark/internal/entities"
	"github.com/linkmarkhq/linkmark/internal/tasks"
)

// backfillBatchSize bounds how many bookmarks one backfill run enqueues.
const backfillBatchSize = 50

// BackfillStore lists bookmarks still waiting for a summary.
type BackfillStore interface {
	ListMissingSummaries(ctx context.Context, limit int) ([]entities.Bookmark, error)
}

// Scheduler manages the cron entries for periodic maintenance.
type Scheduler struct {
	store      BackfillStore
	taskClient *tasks.Client
	cfg        config.Scheduler

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// New creates a scheduler. The task client must already be registered with
// the summarize and cleanup queues.
func New(store BackfillStore, taskClient *tasks.Client, cfg config.Scheduler) *Scheduler {
	return &Scheduler{
		store:      store,
		taskClient: taskClient,
		cfg:        cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start registers the enabled jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.cfg.SummaryBackfillEnabled {
		_, err := s.cron.AddFunc(s.cfg.SummaryBackfillSchedule, func() {
			s.runSummaryBackfill(ctx)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule summary backfill: %w", err)
		}
		log.Printf("Summary backfill scheduled: %s", s.cfg.SummaryBackfillSchedule)
	}

	if s.cfg.TagCleanupEnabled {
		_, err := s.cron.AddFunc(s.cfg.TagCleanupSchedule, func() {
			s.runTagCleanup(ctx)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule tag cleanup: %w", err)
		}
		log.Printf("Tag cleanup scheduled: %s", s.cfg.TagCleanupSchedule)
	}

	s.cron.Start()
	s.isRunning = true
	return nil
}

// Stop halts the cron loop; running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	s.cron.Stop()
	s.isRunning = false
}

func (s *Scheduler) runSummaryBackfill(ctx context.Context) {
	bookmarks, err := s.store.ListMissingSummaries(ctx, backfillBatchSize)
	if err != nil {
		log.Printf("Summary backfill: listing bookmarks failed: %v", err)
		return
	}
	if len(bookmarks) == 0 {
		return
	}

	enqueued := 0
	for _, bookmark := range bookmarks {
		_, err := s.taskClient.Add(tasks.SummarizeBookmarkTask{BookmarkID: bookmark.ID}).Ctx(ctx).Save()
		if err != nil {
			log.Printf("Summary backfill: enqueue for %s failed: %v", bookmark.ID, err)
			continue
		}
		enqueued++
	}
	log.Printf("Summary backfill: enqueued %d of %d pending bookmarks", enqueued, len(bookmarks))
}

func (s *Scheduler) runTagCleanup(ctx context.Context) {
	if _, err := s.taskClient.Add(tasks.CleanupOrphanTagsTask{}).Ctx(ctx).Save(); err != nil {
		log.Printf("Tag cleanup: enqueue failed: %v", err)
	}
}
