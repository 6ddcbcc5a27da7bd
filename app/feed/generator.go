package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/arjunsatarkar/tagrss/app/cfg"
	"github.com/arjunsatarkar/tagrss/app/database"
)

// Generator renders a set of stored entries back into an RSS 2.0 document,
// so any slice of the entry log (one feed, a tag intersection, everything)
// can itself be consumed as a feed.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(title, selfLink string, entries []database.Entry) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", title, 4)
	g.writeElement(&buf, "link", selfLink, 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Entries aggregated by %s", title), 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := time.Now().UTC()
	if len(entries) > 0 {
		lastBuildDate = time.Unix(itemEpoch(entries[0]), 0).UTC()
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("tagrss/%s", cfg.GetVersion()), 4)

	for _, entry := range entries {
		g.writeItem(&buf, entry)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String()
}

func (g *Generator) writeItem(buf *bytes.Buffer, entry database.Entry) {
	buf.WriteString("    <item>\n")

	// Entry ids are stable and never reused, so they serve as guids.
	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"false\">tagrss-entry-%d</guid>\n", entry.ID))

	if entry.Title != nil {
		g.writeElement(buf, "title", *entry.Title, 6)
	}

	if entry.Link != nil {
		g.writeElement(buf, "link", *entry.Link, 6)
	}

	pubDate := time.Unix(itemEpoch(entry), 0).UTC()
	g.writeElement(buf, "pubDate", pubDate.Format(time.RFC1123Z), 6)

	buf.WriteString("    </item>\n")
}

// itemEpoch picks the best timestamp an entry carries: published, else
// updated, else the time it was downloaded.
func itemEpoch(entry database.Entry) int64 {
	if entry.EpochPublished != nil {
		return *entry.EpochPublished
	}
	if entry.EpochUpdated != nil {
		return *entry.EpochUpdated
	}
	return entry.EpochDownloaded
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
