// Package search ranks bookmarks against a free-text query with fuzzy
// matching. It complements the FTS queries in storage: FTS answers word
// and prefix searches over the whole collection, this package powers
// interactive narrowing where typos and subsequences should still hit.
package search

import (
	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result represents one fuzzy match.
type Result struct {
	Bookmark       *model.Bookmark
	MatchedIndexes []int
	Score          int
}

// bookmarkSource implements fuzzy.Source over title plus URL, so queries
// can hit either field.
type bookmarkSource []*model.Bookmark

func (bs bookmarkSource) String(i int) string {
	return bs[i].Title + " " + bs[i].URL
}

func (bs bookmarkSource) Len() int {
	return len(bs)
}

// FuzzySearch matches the query against every bookmark's title and URL.
// Results come back sorted by match score, best first. An empty query
// returns nil.
func FuzzySearch(bookmarks []model.Bookmark, query string) []Result {
	if query == "" {
		return nil
	}

	source := make(bookmarkSource, len(bookmarks))
	for i := range bookmarks {
		source[i] = &bookmarks[i]
	}

	matches := fuzzy.FindFrom(query, source)

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Bookmark:       source[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
