package database

import "errors"

var (
	// ErrSourceAlreadyExists is returned when another feed already uses the
	// source being stored or set.
	ErrSourceAlreadyExists = errors.New("feed source already exists")

	// ErrTitleAlreadyInUse is returned when another feed already uses the
	// title being stored or set.
	ErrTitleAlreadyInUse = errors.New("feed title already in use")

	// ErrFeedNotFound is returned by point lookups for a feed id that does
	// not exist.
	ErrFeedNotFound = errors.New("feed does not exist")

	// ErrConstraintViolation is returned when storing entries for a feed
	// that was deleted concurrently. The batch is rolled back in full.
	ErrConstraintViolation = errors.New("storage constraint violation")

	// ErrForeignKeysDisabled is returned at startup when the SQLite build
	// does not enforce foreign keys. Without enforcement, deleting a feed
	// would silently orphan its entries.
	ErrForeignKeysDisabled = errors.New("sqlite foreign key support is missing or disabled")
)
