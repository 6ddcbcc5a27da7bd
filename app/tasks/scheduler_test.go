package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arjunsatarkar/tagrss/app/core"
	"github.com/arjunsatarkar/tagrss/app/database"
	"github.com/arjunsatarkar/tagrss/app/feed"
)

const rssDocument = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Example Feed</title>
<link>https://example.com/</link>
<description>An example feed</description>
<item>
<title>Only Post</title>
<link>https://example.com/posts/1</link>
</item>
</channel>
</rss>`

func newTestCore(t *testing.T) (*core.Core, database.FeedRepository, database.EntryRepository) {
	t.Helper()

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	if _, _, err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	feeds := database.NewFeedRepository(db)
	entries := database.NewEntryRepository(db)
	fetcher := feed.NewFetcher(&http.Client{Timeout: 5 * time.Second}, feed.NewParser(), "tagrss-test/1.0")
	c := core.New(db, feeds, entries, fetcher)
	t.Cleanup(func() { c.Close() })

	return c, feeds, entries
}

func TestRunBatchToleratesFailures(t *testing.T) {
	c, feeds, entries := newTestCore(t)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssDocument))
	}))
	defer healthy.Close()

	brokenID, _ := feeds.StoreFeed(broken.URL, "Broken", nil)
	healthyID, _ := feeds.StoreFeed(healthy.URL, "Healthy", nil)

	scheduler := NewScheduler(c, time.Hour)
	scheduler.runBatch(context.Background())

	count, err := entries.GetEntryCount(database.Filter{FeedIDs: []int64{healthyID}})
	if err != nil {
		t.Fatalf("Failed to get entry count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected healthy feed to gain 1 entry despite broken peer, got %d", count)
	}

	count, _ = entries.GetEntryCount(database.Filter{FeedIDs: []int64{brokenID}})
	if count != 0 {
		t.Errorf("Expected broken feed to gain no entries, got %d", count)
	}
}

func TestRunBatchStopsBetweenPages(t *testing.T) {
	c, feeds, entries := newTestCore(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssDocument))
	}))
	defer server.Close()

	feedID, _ := feeds.StoreFeed(server.URL, "Feed", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scheduler := NewScheduler(c, time.Hour)
	scheduler.runBatch(ctx)

	count, _ := entries.GetEntryCount(database.Filter{FeedIDs: []int64{feedID}})
	if count != 0 {
		t.Errorf("Expected cancelled batch to update nothing, got %d entries", count)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	c, feeds, entries := newTestCore(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssDocument))
	}))
	defer server.Close()

	feedID, _ := feeds.StoreFeed(server.URL, "Feed", nil)

	scheduler := NewScheduler(c, time.Hour)
	scheduler.Start()

	deadline := time.Now().Add(5 * time.Second)
	for {
		count, err := entries.GetEntryCount(database.Filter{FeedIDs: []int64{feedID}})
		if err != nil {
			t.Fatalf("Failed to get entry count: %v", err)
		}
		if count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Startup batch did not update the feed, entry count %d", count)
		}
		time.Sleep(10 * time.Millisecond)
	}

	scheduler.Stop()
}
