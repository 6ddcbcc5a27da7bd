package api

import (
	"github.com/arjunsatarkar/tagrss/app/core"
	"github.com/arjunsatarkar/tagrss/app/feed"
)

// Caller-side policy bounds. The storage layer itself does not bound page
// sizes or tag-set sizes; the HTTP boundary does.
const (
	MaxPerPage     = 1000
	DefaultPerPage = 50
	MaxTags        = 100
)

type Handler struct {
	core      *core.Core
	generator *feed.Generator
}

type addFeedRequest struct {
	Source string `json:"source" binding:"required"`
	// Title overrides the fetched feed title when non-empty.
	Title string `json:"title"`
	// Tags is space-separated with backslash escaping, as produced by
	// SerializeTags.
	Tags string `json:"tags"`
}

type updateFeedRequest struct {
	Source *string `json:"source"`
	Title  *string `json:"title"`
	Tags   *string `json:"tags"`
}

type feedResponse struct {
	ID     int64    `json:"id"`
	Source string   `json:"source"`
	Title  string   `json:"title"`
	Tags   []string `json:"tags,omitempty"`
}

type entryResponse struct {
	ID              int64   `json:"id"`
	FeedID          int64   `json:"feed_id"`
	Title           *string `json:"title"`
	Link            *string `json:"link"`
	EpochPublished  *int64  `json:"epoch_published"`
	EpochUpdated    *int64  `json:"epoch_updated"`
	EpochDownloaded int64   `json:"epoch_downloaded"`
}

type pageResponse struct {
	PageNum    int `json:"page_num"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}
