package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arjunsatarkar/tagrss/app/core"
	"github.com/arjunsatarkar/tagrss/app/database"
	"github.com/arjunsatarkar/tagrss/app/feed"
)

func NewHandler(c *core.Core) *Handler {
	return &Handler{core: c, generator: feed.NewGenerator()}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if feedCount, err := h.core.GetFeedCount(database.Filter{}); err == nil {
		health["feeds"] = feedCount
	}
	if entryCount, err := h.core.GetEntryCount(database.Filter{}); err == nil {
		health["entries"] = entryCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetEntries(c *gin.Context) {
	limit, offset, pageNum := pagination(c)

	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := h.core.GetEntryCount(filter)
	if err != nil {
		slog.Error("Database error", "operation", "get_entry_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	entries, err := h.core.GetEntries(limit, offset, filter)
	if err != nil {
		slog.Error("Database error", "operation", "get_entries", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	resp := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, entryResponse{
			ID:              entry.ID,
			FeedID:          entry.FeedID,
			Title:           entry.Title,
			Link:            entry.Link,
			EpochPublished:  entry.EpochPublished,
			EpochUpdated:    entry.EpochUpdated,
			EpochDownloaded: entry.EpochDownloaded,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": resp,
		"page":    pageOf(pageNum, limit, total),
	})
}

// GetEntriesRSS serves the same entry selection as GetEntries, rendered as
// an RSS 2.0 document, so a tag intersection can be subscribed to from any
// feed reader.
func (h *Handler) GetEntriesRSS(c *gin.Context) {
	limit, offset, _ := pagination(c)

	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.core.GetEntries(limit, offset, filter)
	if err != nil {
		slog.Error("Database error", "operation", "get_entries", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	selfLink := "http://" + c.Request.Host + c.Request.URL.RequestURI()
	doc := h.generator.Run("tagrss", selfLink, entries)

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(doc))
}

func (h *Handler) ListFeeds(c *gin.Context) {
	limit, offset, pageNum := pagination(c)

	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := h.core.GetFeedCount(filter)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	feeds, err := h.core.GetFeeds(limit, offset, filter, true)
	if err != nil {
		slog.Error("Database error", "operation", "get_feeds", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	resp := make([]feedResponse, 0, len(feeds))
	for _, f := range feeds {
		resp = append(resp, feedResponse{ID: f.ID, Source: f.Source, Title: f.Title, Tags: f.Tags})
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": resp,
		"page":  pageOf(pageNum, limit, total),
	})
}

func (h *Handler) AddFeed(c *gin.Context) {
	var req addFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source is required"})
		return
	}

	tags := feed.ParseTags(req.Tags)
	if len(tags) > MaxTags {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("a feed cannot have more than %d tags", MaxTags)})
		return
	}

	feedID, err := h.core.AddFeed(c.Request.Context(), req.Source, tags, req.Title)
	if err != nil {
		h.renderFeedError(c, req.Source, err)
		return
	}

	slog.Info("Added feed", "feed_id", feedID, "source", req.Source)
	c.JSON(http.StatusCreated, gin.H{"feed_id": feedID})
}

func (h *Handler) GetFeed(c *gin.Context) {
	feedID, ok := feedIDParam(c)
	if !ok {
		return
	}

	source, err := h.core.GetFeedSource(feedID)
	if err != nil {
		h.renderFeedError(c, "", err)
		return
	}
	title, err := h.core.GetFeedTitle(feedID)
	if err != nil {
		h.renderFeedError(c, source, err)
		return
	}
	tags, err := h.core.GetFeedTags(feedID)
	if err != nil {
		h.renderFeedError(c, source, err)
		return
	}

	c.JSON(http.StatusOK, feedResponse{ID: feedID, Source: source, Title: title, Tags: tags})
}

// UpdateFeedDetails edits a feed's source, title and tag set. Each field is
// applied independently, mirroring the management form of the original UI.
func (h *Handler) UpdateFeedDetails(c *gin.Context) {
	feedID, ok := feedIDParam(c)
	if !ok {
		return
	}

	var req updateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Source != nil {
		if err := h.core.SetFeedSource(feedID, *req.Source); err != nil {
			h.renderFeedError(c, *req.Source, err)
			return
		}
	}
	if req.Title != nil {
		if err := h.core.SetFeedTitle(feedID, *req.Title); err != nil {
			h.renderFeedError(c, "", err)
			return
		}
	}
	if req.Tags != nil {
		tags := feed.ParseTags(*req.Tags)
		if len(tags) > MaxTags {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("a feed cannot have more than %d tags", MaxTags)})
			return
		}
		if err := h.core.SetFeedTags(feedID, tags); err != nil {
			h.renderFeedError(c, "", err)
			return
		}
	}

	slog.Info("Edited feed details", "feed_id", feedID)
	c.Status(http.StatusNoContent)
}

// RefreshFeed re-fetches one feed immediately, outside the scheduled batch.
func (h *Handler) RefreshFeed(c *gin.Context) {
	feedID, ok := feedIDParam(c)
	if !ok {
		return
	}

	if err := h.core.UpdateFeed(c.Request.Context(), feedID); err != nil {
		h.renderFeedError(c, "", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	feedID, ok := feedIDParam(c)
	if !ok {
		return
	}

	if err := h.core.DeleteFeed(feedID); err != nil {
		slog.Error("Database error", "operation", "delete_feed", "feed_id", feedID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	slog.Info("Deleted feed", "feed_id", feedID)
	c.Status(http.StatusNoContent)
}

// renderFeedError maps core errors onto the response contract: integrity
// and source-attributable fetch errors are caller input errors, transport
// fetch errors are upstream failures, unknown ids are 404s.
func (h *Handler) renderFeedError(c *gin.Context, source string, err error) {
	var fetchErr *feed.FetchError
	switch {
	case errors.Is(err, database.ErrSourceAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "a feed with that source already exists"})
	case errors.Is(err, database.ErrTitleAlreadyInUse):
		c.JSON(http.StatusBadRequest, gin.H{"error": "a feed with that title already exists"})
	case errors.Is(err, database.ErrFeedNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no such feed"})
	case errors.Is(err, database.ErrConstraintViolation):
		c.JSON(http.StatusConflict, gin.H{"error": "feed was deleted while it was being updated"})
	case errors.As(err, &fetchErr) && fetchErr.BadSource:
		if fetchErr.StatusCode != 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("could not fetch feed: %q returned HTTP %d", fetchErr.Source, fetchErr.StatusCode)})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("could not fetch feed from %q due to a problem with the source", fetchErr.Source)})
		}
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("failed to fetch feed from %q", fetchErr.Source)})
	default:
		slog.Error("Unexpected error", "source", source, "error", err)
		c.Status(http.StatusInternalServerError)
	}
}

func feedIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	feedID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%q is not a valid feed id", raw)})
		return 0, false
	}
	return feedID, true
}

func pagination(c *gin.Context) (limit, offset, pageNum int) {
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(DefaultPerPage)))
	if err != nil || perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	pageNum, err = strconv.Atoi(c.DefaultQuery("page_num", "1"))
	if err != nil || pageNum < 1 {
		pageNum = 1
	}

	return perPage, (pageNum - 1) * perPage, pageNum
}

func pageOf(pageNum, perPage, total int) pageResponse {
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	return pageResponse{PageNum: pageNum, PerPage: perPage, TotalPages: totalPages, Total: total}
}

// parseFilter reads the id-set and tag-set query parameters. Feed ids are
// space-separated integers; tags use the escaped space-separated encoding.
func parseFilter(c *gin.Context) (database.Filter, error) {
	var filter database.Filter

	if raw := c.Query("included_feeds"); raw != "" {
		for _, part := range strings.Fields(raw) {
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return database.Filter{}, fmt.Errorf("%q is not a valid feed id", part)
			}
			filter.FeedIDs = append(filter.FeedIDs, id)
		}
	}

	if raw := c.Query("included_tags"); raw != "" {
		filter.Tags = feed.ParseTags(raw)
		if len(filter.Tags) > MaxTags {
			return database.Filter{}, fmt.Errorf("cannot filter by more than %d tags", MaxTags)
		}
	}

	return filter, nil
}
