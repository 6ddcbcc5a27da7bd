package feed

import (
	"fmt"

	"github.com/arjunsatarkar/tagrss/app/database"
)

// Metadata is the feed-level information extracted from a fetched document.
type Metadata struct {
	Title       string
	Link        string
	Description string
}

// Result is the outcome of one successful fetch-parse run. EpochDownloaded
// is the time of the fetch attempt and is shared by every entry in the run.
type Result struct {
	Metadata        Metadata
	Entries         []database.NewEntry
	EpochDownloaded int64
}

// FetchError classifies a failed fetch. BadSource failures are attributable
// to the source itself (HTTP error status, malformed URL) and are worth
// surfacing to whoever supplied the URL; the rest are transport faults
// (DNS, timeout, connection refused) worth retrying on a later tick.
type FetchError struct {
	Source     string
	StatusCode int
	BadSource  bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("get %s returned HTTP %d", e.Source, e.StatusCode)
	}
	if e.BadSource {
		return fmt.Sprintf("bad feed source %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
