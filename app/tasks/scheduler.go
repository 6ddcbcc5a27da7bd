package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arjunsatarkar/tagrss/app/core"
	"github.com/arjunsatarkar/tagrss/app/database"
	"github.com/arjunsatarkar/tagrss/app/feed"
)

// updatePageSize bounds how many feeds a batch loads at once, so the store
// is held briefly per page rather than for the whole catalog.
const updatePageSize = 100

// Scheduler drives periodic full-catalog refresh through the facade. It
// runs one batch at startup and one per interval; a tick that fires while
// a batch is still in flight is skipped, never queued.
type Scheduler struct {
	core     *core.Core
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	batchWg  sync.WaitGroup
	running  atomic.Bool
}

func NewScheduler(c *core.Core, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		core:     c,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.tryRunBatch()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.tryRunBatch()
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight batch to finish its
// current page and exit.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	s.batchWg.Wait()
}

func (s *Scheduler) tryRunBatch() {
	if !s.running.CompareAndSwap(false, true) {
		slog.Debug("Previous update batch still running, skipping tick")
		return
	}

	s.batchWg.Add(1)
	go func() {
		defer s.batchWg.Done()
		defer s.running.Store(false)
		s.runBatch(s.ctx)
	}()
}

// runBatch updates every feed in the catalog, page by page. Per-feed fetch
// failures and constraint violations are logged and skipped; one broken
// feed never blocks synchronization of the rest. The stop signal is checked
// between pages, not mid-page.
func (s *Scheduler) runBatch(ctx context.Context) {
	slog.Info("Updating all feeds")
	startedAt := time.Now()

	updated := 0
	failed := 0

	for offset := 0; ; offset += updatePageSize {
		select {
		case <-ctx.Done():
			slog.Info("Update batch interrupted by shutdown")
			return
		default:
		}

		feeds, err := s.core.GetFeeds(updatePageSize, offset, database.Filter{}, false)
		if err != nil {
			slog.Error("Failed to list feeds for update", "error", err)
			return
		}
		if len(feeds) == 0 {
			break
		}

		for _, f := range feeds {
			if err := s.core.UpdateFeed(ctx, f.ID); err != nil {
				failed++

				var fetchErr *feed.FetchError
				switch {
				case errors.Is(err, database.ErrConstraintViolation), errors.Is(err, database.ErrFeedNotFound):
					slog.Warn("Feed deleted while updating, skipping", "feed_id", f.ID, "source", f.Source)
				case errors.As(err, &fetchErr):
					slog.Error("Failed to fetch feed", "feed_id", f.ID, "source", f.Source, "bad_source", fetchErr.BadSource, "error", err)
				default:
					slog.Error("Failed to update feed", "feed_id", f.ID, "source", f.Source, "error", err)
				}
				continue
			}

			updated++
			slog.Debug("Updated feed", "feed_id", f.ID, "source", f.Source)
		}

		if len(feeds) < updatePageSize {
			break
		}
	}

	slog.Info("Finished updating all feeds",
		"updated", updated,
		"failed", failed,
		"duration", time.Since(startedAt).String())
}
