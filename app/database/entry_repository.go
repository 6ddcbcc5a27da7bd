package database

import (
	"fmt"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

type entryRepository struct {
	db *DB
}

func NewEntryRepository(db *DB) EntryRepository {
	return &entryRepository{db: db}
}

// StoreEntries appends a batch of entries in one transaction. Feed documents
// conventionally list newest items first, so the batch is inserted in
// reverse: ascending ids then match chronological order within the batch.
// If the owning feed was deleted concurrently the whole batch is rolled back
// and ErrConstraintViolation reported; dropping entries silently would break
// the append-only log the callers rely on.
func (r *entryRepository) StoreEntries(feedID int64, entries []NewEntry, epochDownloaded int64) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO entries (feed_id, title, link, epoch_published, epoch_updated, epoch_downloaded)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if _, err := stmt.Exec(feedID, entry.Title, entry.Link, entry.EpochPublished, entry.EpochUpdated, epochDownloaded); err != nil {
			var feedCount int
			if qerr := tx.QueryRow("SELECT COUNT(*) FROM feeds WHERE id = ?", feedID).Scan(&feedCount); qerr == nil && feedCount == 0 {
				return fmt.Errorf("%w: feed %d was deleted before entries were stored", ErrConstraintViolation, feedID)
			}
			return fmt.Errorf("failed to store entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entries: %w", err)
	}

	return nil
}

// GetEntries returns entries in descending id order: most recently stored
// first.
func (r *entryRepository) GetEntries(limit, offset int, filter Filter) ([]Entry, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "feed_id", "title", "link", "epoch_published", "epoch_updated", "epoch_downloaded").From("entries")
	filter.apply(sb, "entries.feed_id")
	sb.OrderBy("id").Desc()
	sb.Limit(limit).Offset(offset)

	query, args := sb.Build()
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.FeedID, &entry.Title, &entry.Link,
			&entry.EpochPublished, &entry.EpochUpdated, &entry.EpochDownloaded); err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	return entries, nil
}

// GetEntryCount mirrors GetFeedCount: the unfiltered count comes from the
// trigger-maintained entry_count table.
func (r *entryRepository) GetEntryCount(filter Filter) (int, error) {
	var count int

	if filter.IsZero() {
		if err := r.db.QueryRow("SELECT count FROM entry_count").Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to get entry count: %w", err)
		}
		return count, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)").From("entries")
	filter.apply(sb, "entries.feed_id")

	query, args := sb.Build()
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get filtered entry count: %w", err)
	}
	return count, nil
}
