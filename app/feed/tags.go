package feed

import (
	"sort"
	"strings"
)

// ParseTags splits a space-separated tag string into a sorted, deduplicated
// tag set. A backslash escapes the next character, so tags may contain
// spaces ("a\ b") and literal backslashes ("\\"). Empty tags are dropped.
func ParseTags(in string) []string {
	seen := make(map[string]struct{})
	var tag strings.Builder

	flush := func() {
		if tag.Len() > 0 {
			seen[tag.String()] = struct{}{}
			tag.Reset()
		}
	}

	escaped := false
	for _, c := range in {
		switch c {
		case '\\':
			if !escaped {
				escaped = true
				continue
			}
		case ' ':
			if !escaped {
				flush()
				continue
			}
		}
		escaped = false
		tag.WriteRune(c)
	}
	flush()

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// SerializeTags encodes a tag set back into the space-separated form
// ParseTags accepts: backslashes doubled, spaces escaped, tags joined with
// single spaces.
func SerializeTags(tags []string) string {
	parts := make([]string, len(tags))
	for i, tag := range tags {
		escaped := strings.ReplaceAll(tag, `\`, `\\`)
		parts[i] = strings.ReplaceAll(escaped, " ", `\ `)
	}
	return strings.Join(parts, " ")
}
