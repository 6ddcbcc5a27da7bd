package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the single SQLite connection shared by all repositories.
type DB struct {
	*sql.DB
}

// NewConnection opens the SQLite database at storagePath and verifies that
// foreign key enforcement is active. The pool is capped at one open
// connection: SQLite is single-writer, and limiting the pool makes the
// serialization contract a property of the handle instead of ambient
// convention. database/sql queues concurrent callers on the one connection.
func NewConnection(storagePath string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", storagePath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var foreignKeys int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys;").Scan(&foreignKeys); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check foreign key support: %w", err)
	}
	if foreignKeys != 1 {
		db.Close()
		return nil, ErrForeignKeysDisabled
	}

	return &DB{db}, nil
}
