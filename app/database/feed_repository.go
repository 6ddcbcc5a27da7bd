package database

import (
	"database/sql"
	"fmt"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

type feedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) FeedRepository {
	return &feedRepository{db: db}
}

// StoreFeed inserts a feed and its tags in one transaction. SQLite reports
// a single generic constraint error for both unique columns, so on failure
// the colliding column is determined by re-querying inside the same
// transaction.
func (r *feedRepository) StoreFeed(source, title string, tags []string) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("INSERT INTO feeds (source, title) VALUES (?, ?)", source, title)
	if err != nil {
		var sourceCount, titleCount int
		if qerr := tx.QueryRow("SELECT COUNT(*) FROM feeds WHERE source = ?", source).Scan(&sourceCount); qerr != nil {
			return 0, fmt.Errorf("failed to store feed: %w", err)
		}
		if qerr := tx.QueryRow("SELECT COUNT(*) FROM feeds WHERE title = ?", title).Scan(&titleCount); qerr != nil {
			return 0, fmt.Errorf("failed to store feed: %w", err)
		}
		if sourceCount > 0 {
			return 0, ErrSourceAlreadyExists
		}
		if titleCount > 0 {
			return 0, ErrTitleAlreadyInUse
		}
		return 0, fmt.Errorf("failed to store feed: %w", err)
	}

	feedID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get feed id: %w", err)
	}

	for _, tag := range tags {
		if _, err := tx.Exec("INSERT OR IGNORE INTO feed_tags (feed_id, tag) VALUES (?, ?)", feedID, tag); err != nil {
			return 0, fmt.Errorf("failed to store feed tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit feed: %w", err)
	}

	return feedID, nil
}

// GetFeeds returns feeds in ascending id order. When withTags is set, the
// tag sets are attached with a second query joined by feed id.
func (r *feedRepository) GetFeeds(limit, offset int, filter Filter, withTags bool) ([]Feed, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "source", "title").From("feeds")
	filter.apply(sb, "feeds.id")
	sb.OrderBy("id").Asc()
	sb.Limit(limit).Offset(offset)

	query, args := sb.Build()
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		var feed Feed
		if err := rows.Scan(&feed.ID, &feed.Source, &feed.Title); err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	if withTags && len(feeds) > 0 {
		if err := r.attachTags(feeds); err != nil {
			return nil, err
		}
	}

	return feeds, nil
}

func (r *feedRepository) attachTags(feeds []Feed) error {
	ids := make([]interface{}, len(feeds))
	byID := make(map[int64]*Feed, len(feeds))
	for i := range feeds {
		ids[i] = feeds[i].ID
		byID[feeds[i].ID] = &feeds[i]
		feeds[i].Tags = []string{}
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("feed_id", "tag").From("feed_tags")
	sb.Where(sb.In("feed_id", ids...))

	query, args := sb.Build()
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to get feed tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var feedID int64
		var tag string
		if err := rows.Scan(&feedID, &tag); err != nil {
			return fmt.Errorf("failed to scan feed tag row: %w", err)
		}
		if feed, ok := byID[feedID]; ok {
			feed.Tags = append(feed.Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating feed tag rows: %w", err)
	}

	return nil
}

// GetFeedCount serves unfiltered counts from the trigger-maintained
// feed_count table; filtered counts are computed directly.
func (r *feedRepository) GetFeedCount(filter Filter) (int, error) {
	var count int

	if filter.IsZero() {
		if err := r.db.QueryRow("SELECT count FROM feed_count").Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to get feed count: %w", err)
		}
		return count, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)").From("feeds")
	filter.apply(sb, "feeds.id")

	query, args := sb.Build()
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get filtered feed count: %w", err)
	}
	return count, nil
}

func (r *feedRepository) GetFeedSource(feedID int64) (string, error) {
	var source string
	err := r.db.QueryRow("SELECT source FROM feeds WHERE id = ?", feedID).Scan(&source)
	if err == sql.ErrNoRows {
		return "", ErrFeedNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get feed source: %w", err)
	}
	return source, nil
}

func (r *feedRepository) GetFeedTitle(feedID int64) (string, error) {
	var title string
	err := r.db.QueryRow("SELECT title FROM feeds WHERE id = ?", feedID).Scan(&title)
	if err == sql.ErrNoRows {
		return "", ErrFeedNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get feed title: %w", err)
	}
	return title, nil
}

func (r *feedRepository) GetFeedTags(feedID int64) ([]string, error) {
	rows, err := r.db.Query("SELECT tag FROM feed_tags WHERE feed_id = ? ORDER BY tag", feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}

func (r *feedRepository) SetFeedSource(feedID int64, source string) error {
	res, err := r.db.Exec("UPDATE feeds SET source = ? WHERE id = ?", source, feedID)
	if err != nil {
		if r.otherFeedHas(feedID, "source", source) {
			return ErrSourceAlreadyExists
		}
		return fmt.Errorf("failed to set feed source: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrFeedNotFound
	}
	return nil
}

func (r *feedRepository) SetFeedTitle(feedID int64, title string) error {
	res, err := r.db.Exec("UPDATE feeds SET title = ? WHERE id = ?", title, feedID)
	if err != nil {
		if r.otherFeedHas(feedID, "title", title) {
			return ErrTitleAlreadyInUse
		}
		return fmt.Errorf("failed to set feed title: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrFeedNotFound
	}
	return nil
}

func (r *feedRepository) otherFeedHas(feedID int64, column, value string) bool {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)").From("feeds")
	sb.Where(sb.Equal(column, value), sb.NotEqual("id", feedID))

	query, args := sb.Build()
	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return false
	}
	return count > 0
}

// SetFeedTags replaces the whole tag set atomically: readers either see the
// old set or the new one, never a partial mix.
func (r *feedRepository) SetFeedTags(feedID int64, tags []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM feed_tags WHERE feed_id = ?", feedID); err != nil {
		return fmt.Errorf("failed to clear feed tags: %w", err)
	}
	for _, tag := range tags {
		if _, err := tx.Exec("INSERT OR IGNORE INTO feed_tags (feed_id, tag) VALUES (?, ?)", feedID, tag); err != nil {
			return fmt.Errorf("failed to store feed tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feed tags: %w", err)
	}
	return nil
}

// DeleteFeed removes a feed; the schema cascades the delete to its tags and
// entries within the same statement. Deleting an unknown id is a no-op.
func (r *feedRepository) DeleteFeed(feedID int64) error {
	if _, err := r.db.Exec("DELETE FROM feeds WHERE id = ?", feedID); err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}
	return nil
}
