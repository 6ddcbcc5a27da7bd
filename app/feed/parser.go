package feed

import (
	"bytes"
	"log/slog"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/arjunsatarkar/tagrss/app/database"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses a feed document into metadata and normalized entries. Parsing
// is best-effort: real-world feeds are frequently malformed, so a document
// gofeed cannot make sense of yields empty metadata and no entries rather
// than an error. Relative entry links are resolved against base.
func (p *Parser) Run(data []byte, base string) (Metadata, []database.NewEntry) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil || parsed == nil {
		slog.Debug("Feed document could not be parsed", "base", base, "error", err)
		return Metadata{}, nil
	}

	metadata := Metadata{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
	}

	entries := make([]database.NewEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, p.normalizeItem(item, base))
	}

	return metadata, entries
}

func (p *Parser) normalizeItem(item *gofeed.Item, base string) database.NewEntry {
	entry := database.NewEntry{
		EpochPublished: epochOf(item.PublishedParsed),
		EpochUpdated:   epochOf(item.UpdatedParsed),
	}

	if item.Title != "" {
		title := item.Title
		entry.Title = &title
	}
	if item.Link != "" {
		link := resolveLink(base, item.Link)
		entry.Link = &link
	}

	return entry
}

// epochOf converts gofeed's tolerantly-parsed date to a Unix epoch. A
// missing or unparseable source date yields absent, never an error: one bad
// date must not block storing the entry.
func epochOf(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	epoch := t.Unix()
	return &epoch
}

func resolveLink(base, link string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return link
	}
	linkURL, err := url.Parse(link)
	if err != nil {
		return link
	}
	return baseURL.ResolveReference(linkURL).String()
}
