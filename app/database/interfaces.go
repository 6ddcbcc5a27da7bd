package database

// NewEntry is the storable form of one pipeline-normalized feed item.
type NewEntry struct {
	Title          *string
	Link           *string
	EpochPublished *int64
	EpochUpdated   *int64
}

type FeedRepository interface {
	StoreFeed(source, title string, tags []string) (int64, error)
	GetFeeds(limit, offset int, filter Filter, withTags bool) ([]Feed, error)
	GetFeedCount(filter Filter) (int, error)

	GetFeedSource(feedID int64) (string, error)
	GetFeedTitle(feedID int64) (string, error)
	GetFeedTags(feedID int64) ([]string, error)

	SetFeedSource(feedID int64, source string) error
	SetFeedTitle(feedID int64, title string) error
	SetFeedTags(feedID int64, tags []string) error

	DeleteFeed(feedID int64) error
}

type EntryRepository interface {
	StoreEntries(feedID int64, entries []NewEntry, epochDownloaded int64) error
	GetEntries(limit, offset int, filter Filter) ([]Entry, error)
	GetEntryCount(filter Filter) (int, error)
}
