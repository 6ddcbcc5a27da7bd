package database

import (
	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

// Filter restricts feed and entry queries by feed identity and by tags.
// Tag semantics are intersection: a row matches only when its feed carries
// every tag in Tags. An empty Filter matches everything.
type Filter struct {
	FeedIDs []int64
	Tags    []string
}

func (f Filter) IsZero() bool {
	return len(f.FeedIDs) == 0 && len(f.Tags) == 0
}

// apply adds the filter's predicates to a select over feeds or entries.
// feedIDColumn names the column holding the owning feed's id in the outer
// query ("feeds.id" or "entries.feed_id"). Each tag contributes its own
// EXISTS condition against feed_tags, so the conjunction yields "has all of
// these tags" for any tag-set size.
func (f Filter) apply(sb *sqlbuilder.SelectBuilder, feedIDColumn string) {
	if len(f.FeedIDs) > 0 {
		ids := make([]interface{}, len(f.FeedIDs))
		for i, id := range f.FeedIDs {
			ids[i] = id
		}
		sb.Where(sb.In(feedIDColumn, ids...))
	}

	for _, tag := range f.Tags {
		tagSb := sqlbuilder.SQLite.NewSelectBuilder()
		tagSb.Select("1").From("feed_tags")
		tagSb.Where(
			"feed_tags.feed_id = "+feedIDColumn,
			tagSb.Equal("feed_tags.tag", tag),
		)
		sb.Where(sb.Exists(tagSb))
	}
}
