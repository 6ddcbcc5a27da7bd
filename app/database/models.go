package database

// Feed represents a subscribed feed. Tags is only populated when the query
// that produced the Feed was asked for tags.
type Feed struct {
	ID     int64
	Source string
	Title  string
	Tags   []string
}

// Entry represents one item downloaded from a feed. Entries are immutable
// once stored; a re-fetch appends new rows instead of updating old ones.
// Title, Link and the source-reported epochs are absent when the feed
// document did not carry them.
type Entry struct {
	ID              int64
	FeedID          int64
	Title           *string
	Link            *string
	EpochPublished  *int64
	EpochUpdated    *int64
	EpochDownloaded int64
}
