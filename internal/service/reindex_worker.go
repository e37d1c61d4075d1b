package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"

	"golang.org/x/sync/errgroup"
)

type ReindexSummary struct {
	Invalidated int `json:"invalidated"`
	Purged      int `json:"purged"`
	Indexed     int `json:"indexed"`
	Unchanged   int `json:"unchanged"`
	Pending     int `json:"pending"`
	Skipped     int `json:"skipped"`
}

// ReindexWorker periodically brings the vector store back in line with the
// note store: it marks notes embedded by another model stale, finishes
// interrupted deletes and indexes every draft or stale note.
type ReindexWorker struct {
	notes    INoteService
	indexing IIndexingService
	log      logger.ILogger
	interval time.Duration
	workers  int
}

func NewReindexWorker(notes INoteService, indexing IIndexingService, log logger.ILogger, interval time.Duration, workers int) *ReindexWorker {
	if workers < 1 {
		workers = 1
	}
	return &ReindexWorker{
		notes:    notes,
		indexing: indexing,
		log:      log,
		interval: interval,
		workers:  workers,
	}
}

func (w *ReindexWorker) RunOnce(ctx context.Context) (*ReindexSummary, error) {
	summary := &ReindexSummary{}

	invalidated, err := w.notes.InvalidateEmbeddingVersion(ctx, w.indexing.EmbeddingVersion())
	summary.Invalidated = invalidated
	if err != nil {
		return summary, err
	}

	purged, err := w.notes.PurgeDeleted(ctx)
	summary.Purged = purged
	if err != nil {
		// The vector store may be down; indexing would fail the same way.
		return summary, err
	}

	stale, err := w.notes.ListStale(ctx)
	if err != nil {
		return summary, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)
	for _, n := range stale {
		id := n.Id
		g.Go(func() error {
			res, err := w.indexing.IndexNote(gctx, id)
			if errors.Is(err, apperror.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch res.Status {
			case IndexStatusIndexed:
				summary.Indexed++
			case IndexStatusUnchanged:
				summary.Unchanged++
			case IndexStatusPending:
				summary.Pending++
			case IndexStatusSkipped:
				summary.Skipped++
			}
			return nil
		})
	}
	err = g.Wait()

	w.log.Info("REINDEX", "Reindex pass finished", map[string]interface{}{
		"candidates":  len(stale),
		"invalidated": summary.Invalidated,
		"purged":      summary.Purged,
		"indexed":     summary.Indexed,
		"pending":     summary.Pending,
	})
	return summary, err
}

// Start runs a pass immediately and then every interval until ctx is done.
func (w *ReindexWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.log.Error("REINDEX", "Reindex pass failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
