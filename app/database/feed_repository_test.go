package database

import (
	"errors"
	"reflect"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestStoreFeed(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	feedID, err := repo.StoreFeed("https://example.com/feed.xml", "Example", []string{"go", "news"})
	if err != nil {
		t.Fatalf("Failed to store feed: %v", err)
	}

	if feedID <= 0 {
		t.Errorf("Expected positive feed ID, got %d", feedID)
	}

	tags, err := repo.GetFeedTags(feedID)
	if err != nil {
		t.Fatalf("Failed to get feed tags: %v", err)
	}

	if !reflect.DeepEqual(tags, []string{"go", "news"}) {
		t.Errorf("Expected tags [go news], got %v", tags)
	}

	count, err := repo.GetFeedCount(Filter{})
	if err != nil {
		t.Fatalf("Failed to get feed count: %v", err)
	}

	if count != 1 {
		t.Errorf("Expected feed count 1, got %d", count)
	}
}

func TestStoreFeedDuplicateSource(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	if _, err := repo.StoreFeed("https://example.com/feed.xml", "First", nil); err != nil {
		t.Fatalf("Failed to store feed: %v", err)
	}

	_, err := repo.StoreFeed("https://example.com/feed.xml", "Second", nil)
	if !errors.Is(err, ErrSourceAlreadyExists) {
		t.Errorf("Expected ErrSourceAlreadyExists, got %v", err)
	}

	count, _ := repo.GetFeedCount(Filter{})
	if count != 1 {
		t.Errorf("Expected feed count 1 after rejected duplicate, got %d", count)
	}
}

func TestStoreFeedDuplicateTitle(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	if _, err := repo.StoreFeed("https://example.com/a.xml", "Same Title", nil); err != nil {
		t.Fatalf("Failed to store feed: %v", err)
	}

	_, err := repo.StoreFeed("https://example.com/b.xml", "Same Title", nil)
	if !errors.Is(err, ErrTitleAlreadyInUse) {
		t.Errorf("Expected ErrTitleAlreadyInUse, got %v", err)
	}
}

func TestGetFeedsTagIntersection(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	onlyA, _ := repo.StoreFeed("https://example.com/a.xml", "Only A", []string{"a"})
	onlyB, _ := repo.StoreFeed("https://example.com/b.xml", "Only B", []string{"b"})
	both, _ := repo.StoreFeed("https://example.com/ab.xml", "Both", []string{"a", "b"})

	feeds, err := repo.GetFeeds(100, 0, Filter{Tags: []string{"a", "b"}}, false)
	if err != nil {
		t.Fatalf("Failed to get feeds: %v", err)
	}

	if len(feeds) != 1 || feeds[0].ID != both {
		t.Fatalf("Expected only feed %d to match both tags, got %v", both, feeds)
	}

	count, err := repo.GetFeedCount(Filter{Tags: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Failed to get feed count: %v", err)
	}

	if count != 1 {
		t.Errorf("Expected filtered feed count 1, got %d", count)
	}

	feeds, err = repo.GetFeeds(100, 0, Filter{Tags: []string{"a"}}, false)
	if err != nil {
		t.Fatalf("Failed to get feeds: %v", err)
	}

	if len(feeds) != 2 || feeds[0].ID != onlyA || feeds[1].ID != both {
		t.Errorf("Expected feeds [%d %d] ordered by ID, got %v", onlyA, both, feeds)
	}

	_ = onlyB
}

func TestGetFeedsWithTags(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	tagged, _ := repo.StoreFeed("https://example.com/a.xml", "Tagged", []string{"go"})
	untagged, _ := repo.StoreFeed("https://example.com/b.xml", "Untagged", nil)

	feeds, err := repo.GetFeeds(100, 0, Filter{}, true)
	if err != nil {
		t.Fatalf("Failed to get feeds: %v", err)
	}

	if len(feeds) != 2 {
		t.Fatalf("Expected 2 feeds, got %d", len(feeds))
	}

	if feeds[0].ID != tagged || !reflect.DeepEqual(feeds[0].Tags, []string{"go"}) {
		t.Errorf("Expected feed %d with tags [go], got %+v", tagged, feeds[0])
	}

	if feeds[1].ID != untagged || len(feeds[1].Tags) != 0 {
		t.Errorf("Expected feed %d with no tags, got %+v", untagged, feeds[1])
	}
}

func TestGetFeedsPagination(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	first, _ := repo.StoreFeed("https://example.com/1.xml", "One", nil)
	second, _ := repo.StoreFeed("https://example.com/2.xml", "Two", nil)
	third, _ := repo.StoreFeed("https://example.com/3.xml", "Three", nil)

	feeds, err := repo.GetFeeds(2, 0, Filter{}, false)
	if err != nil {
		t.Fatalf("Failed to get first page: %v", err)
	}

	if len(feeds) != 2 || feeds[0].ID != first || feeds[1].ID != second {
		t.Errorf("Expected first page [%d %d], got %v", first, second, feeds)
	}

	feeds, err = repo.GetFeeds(2, 2, Filter{}, false)
	if err != nil {
		t.Fatalf("Failed to get second page: %v", err)
	}

	if len(feeds) != 1 || feeds[0].ID != third {
		t.Errorf("Expected second page [%d], got %v", third, feeds)
	}
}

func TestGetFeedPointLookups(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	feedID, _ := repo.StoreFeed("https://example.com/feed.xml", "Example", []string{"go"})

	source, err := repo.GetFeedSource(feedID)
	if err != nil || source != "https://example.com/feed.xml" {
		t.Errorf("Expected stored source, got %q (err %v)", source, err)
	}

	title, err := repo.GetFeedTitle(feedID)
	if err != nil || title != "Example" {
		t.Errorf("Expected stored title, got %q (err %v)", title, err)
	}

	if _, err := repo.GetFeedSource(999); !errors.Is(err, ErrFeedNotFound) {
		t.Errorf("Expected ErrFeedNotFound for missing feed, got %v", err)
	}

	if _, err := repo.GetFeedTitle(999); !errors.Is(err, ErrFeedNotFound) {
		t.Errorf("Expected ErrFeedNotFound for missing feed, got %v", err)
	}
}

func TestSetFeedSource(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	feedID, _ := repo.StoreFeed("https://example.com/a.xml", "A", nil)
	otherID, _ := repo.StoreFeed("https://example.com/b.xml", "B", nil)

	if err := repo.SetFeedSource(feedID, "https://example.com/moved.xml"); err != nil {
		t.Fatalf("Failed to set feed source: %v", err)
	}

	source, _ := repo.GetFeedSource(feedID)
	if source != "https://example.com/moved.xml" {
		t.Errorf("Expected updated source, got %q", source)
	}

	err := repo.SetFeedSource(otherID, "https://example.com/moved.xml")
	if !errors.Is(err, ErrSourceAlreadyExists) {
		t.Errorf("Expected ErrSourceAlreadyExists, got %v", err)
	}

	if err := repo.SetFeedSource(999, "https://example.com/none.xml"); !errors.Is(err, ErrFeedNotFound) {
		t.Errorf("Expected ErrFeedNotFound for missing feed, got %v", err)
	}
}

func TestSetFeedTitle(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	feedID, _ := repo.StoreFeed("https://example.com/a.xml", "A", nil)
	otherID, _ := repo.StoreFeed("https://example.com/b.xml", "B", nil)

	if err := repo.SetFeedTitle(feedID, "Renamed"); err != nil {
		t.Fatalf("Failed to set feed title: %v", err)
	}

	err := repo.SetFeedTitle(otherID, "Renamed")
	if !errors.Is(err, ErrTitleAlreadyInUse) {
		t.Errorf("Expected ErrTitleAlreadyInUse, got %v", err)
	}
}

func TestSetFeedTags(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	feedID, _ := repo.StoreFeed("https://example.com/feed.xml", "Example", []string{"old", "stale"})

	if err := repo.SetFeedTags(feedID, []string{"fresh"}); err != nil {
		t.Fatalf("Failed to set feed tags: %v", err)
	}

	tags, err := repo.GetFeedTags(feedID)
	if err != nil {
		t.Fatalf("Failed to get feed tags: %v", err)
	}

	if !reflect.DeepEqual(tags, []string{"fresh"}) {
		t.Errorf("Expected tags [fresh] with no residue, got %v", tags)
	}

	if err := repo.SetFeedTags(feedID, nil); err != nil {
		t.Fatalf("Failed to clear feed tags: %v", err)
	}

	tags, _ = repo.GetFeedTags(feedID)
	if len(tags) != 0 {
		t.Errorf("Expected no tags after clearing, got %v", tags)
	}
}

func TestDeleteFeed(t *testing.T) {
	db := newTestDB(t)
	feeds := NewFeedRepository(db)
	entries := NewEntryRepository(db)

	feedID, _ := feeds.StoreFeed("https://example.com/feed.xml", "Example", []string{"go"})

	title := "Entry"
	if err := entries.StoreEntries(feedID, []NewEntry{{Title: &title}}, 1700000000); err != nil {
		t.Fatalf("Failed to store entries: %v", err)
	}

	if err := feeds.DeleteFeed(feedID); err != nil {
		t.Fatalf("Failed to delete feed: %v", err)
	}

	if _, err := feeds.GetFeedSource(feedID); !errors.Is(err, ErrFeedNotFound) {
		t.Errorf("Expected ErrFeedNotFound after delete, got %v", err)
	}

	feedCount, _ := feeds.GetFeedCount(Filter{})
	if feedCount != 0 {
		t.Errorf("Expected feed count 0 after delete, got %d", feedCount)
	}

	entryCount, _ := entries.GetEntryCount(Filter{})
	if entryCount != 0 {
		t.Errorf("Expected entry count 0 after cascade delete, got %d", entryCount)
	}

	remaining, _ := entries.GetEntries(100, 0, Filter{FeedIDs: []int64{feedID}})
	if len(remaining) != 0 {
		t.Errorf("Expected no entries after cascade delete, got %v", remaining)
	}
}

func TestDeleteFeedMissing(t *testing.T) {
	repo := NewFeedRepository(newTestDB(t))

	if err := repo.DeleteFeed(999); err != nil {
		t.Errorf("Expected deleting a missing feed to succeed, got %v", err)
	}
}
