// Package core is the synchronization facade: the only component that
// combines the fetch-parse pipeline with the persistent store. Everything
// above it (HTTP handlers, the scheduler, the seed loader) talks to the
// system through a Core.
package core

import (
	"context"
	"fmt"

	"github.com/arjunsatarkar/tagrss/app/database"
	"github.com/arjunsatarkar/tagrss/app/feed"
)

type Core struct {
	db      *database.DB
	feeds   database.FeedRepository
	entries database.EntryRepository
	fetcher *feed.Fetcher
}

func New(db *database.DB, feeds database.FeedRepository, entries database.EntryRepository, fetcher *feed.Fetcher) *Core {
	return &Core{
		db:      db,
		feeds:   feeds,
		entries: entries,
		fetcher: fetcher,
	}
}

// AddFeed fetches source, stores a feed under the fetched title (or
// customTitle when non-empty) with its tags, then stores the fetched
// entries, all stamped with the fetch's download epoch. The fetch happens
// before any storage call, so a fetch failure creates nothing, and a
// uniqueness violation in StoreFeed leaves no partial row behind.
func (c *Core) AddFeed(ctx context.Context, source string, tags []string, customTitle string) (int64, error) {
	result, err := c.fetcher.Run(ctx, source)
	if err != nil {
		return 0, err
	}

	title := result.Metadata.Title
	if customTitle != "" {
		title = customTitle
	}

	feedID, err := c.feeds.StoreFeed(source, title, tags)
	if err != nil {
		return 0, err
	}

	if err := c.entries.StoreEntries(feedID, result.Entries, result.EpochDownloaded); err != nil {
		return feedID, fmt.Errorf("feed %d stored but its entries were not: %w", feedID, err)
	}

	return feedID, nil
}

// UpdateFeed re-fetches the feed's current source and appends the new
// entries. ErrConstraintViolation from the store step means the feed was
// deleted while the fetch was in flight; batch callers log and skip it.
func (c *Core) UpdateFeed(ctx context.Context, feedID int64) error {
	source, err := c.feeds.GetFeedSource(feedID)
	if err != nil {
		return err
	}

	result, err := c.fetcher.Run(ctx, source)
	if err != nil {
		return err
	}

	return c.entries.StoreEntries(feedID, result.Entries, result.EpochDownloaded)
}

func (c *Core) GetFeeds(limit, offset int, filter database.Filter, withTags bool) ([]database.Feed, error) {
	return c.feeds.GetFeeds(limit, offset, filter, withTags)
}

func (c *Core) GetFeedCount(filter database.Filter) (int, error) {
	return c.feeds.GetFeedCount(filter)
}

func (c *Core) GetFeedSource(feedID int64) (string, error) {
	return c.feeds.GetFeedSource(feedID)
}

func (c *Core) GetFeedTitle(feedID int64) (string, error) {
	return c.feeds.GetFeedTitle(feedID)
}

func (c *Core) GetFeedTags(feedID int64) ([]string, error) {
	return c.feeds.GetFeedTags(feedID)
}

func (c *Core) SetFeedSource(feedID int64, source string) error {
	return c.feeds.SetFeedSource(feedID, source)
}

func (c *Core) SetFeedTitle(feedID int64, title string) error {
	return c.feeds.SetFeedTitle(feedID, title)
}

func (c *Core) SetFeedTags(feedID int64, tags []string) error {
	return c.feeds.SetFeedTags(feedID, tags)
}

func (c *Core) DeleteFeed(feedID int64) error {
	return c.feeds.DeleteFeed(feedID)
}

func (c *Core) GetEntries(limit, offset int, filter database.Filter) ([]database.Entry, error) {
	return c.entries.GetEntries(limit, offset, filter)
}

func (c *Core) GetEntryCount(filter database.Filter) (int, error) {
	return c.entries.GetEntryCount(filter)
}

// Close releases the underlying storage. Call once at shutdown, after the
// scheduler and HTTP server have stopped.
func (c *Core) Close() error {
	return c.db.Close()
}
