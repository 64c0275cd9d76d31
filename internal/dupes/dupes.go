// Package dupes detects exact and near-duplicate bookmarks over normalized
// URLs.
package dupes

import (
	"context"
	"sort"
	"time"

	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/nikbrunner/bmsweep/internal/urlnorm"
)

// DefaultThreshold is the minimum similarity for a similar-duplicate pair.
const DefaultThreshold = 0.85

// Options configures a detection run.
type Options struct {
	Threshold float64 // 0 = DefaultThreshold
}

// ProgressFunc receives (current, total, status) updates during a run.
type ProgressFunc func(current, total int, status string)

// Report is the outcome of one detection run. Groups carry the run ID; the
// caller persists them (write-once per run) through the store.
type Report struct {
	RunID         string
	ExactGroups   []model.DuplicateGroup
	SimilarGroups []model.DuplicateGroup
	UniqueURLs    int
}

// Groups returns exact and similar groups in one slice.
func (r *Report) Groups() []model.DuplicateGroup {
	groups := make([]model.DuplicateGroup, 0, len(r.ExactGroups)+len(r.SimilarGroups))
	groups = append(groups, r.ExactGroups...)
	groups = append(groups, r.SimilarGroups...)
	return groups
}

// Find runs both detection passes over the given bookmarks.
//
// The exact pass buckets bookmarks by normalized URL; buckets with more than
// one member become exact groups at similarity 1.0. The similar pass
// compares unordered pairs of *distinct* normalized URLs (O(U²) on unique
// URLs, not O(N²) on bookmarks) by signature similarity; pairs at or above
// the threshold and strictly below 1.0 become similar groups holding both
// URLs' bookmarks. Cancellation is checked per outer-loop iteration.
func Find(ctx context.Context, bookmarks []model.Bookmark, opts Options, onProgress ProgressFunc) (*Report, error) {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	report := &Report{RunID: model.NewRunID()}

	// Exact pass.
	byURL := make(map[string][]model.Bookmark)
	for i, b := range bookmarks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		normalized := urlnorm.Normalize(b.URL)
		byURL[normalized] = append(byURL[normalized], b)

		if onProgress != nil && i%100 == 0 {
			onProgress(i, len(bookmarks), "Finding exact duplicates...")
		}
	}

	// Deterministic group order regardless of map iteration.
	uniqueURLs := make([]string, 0, len(byURL))
	for u := range byURL {
		uniqueURLs = append(uniqueURLs, u)
	}
	sort.Strings(uniqueURLs)
	report.UniqueURLs = len(uniqueURLs)

	now := time.Now()
	for _, u := range uniqueURLs {
		members := byURL[u]
		if len(members) < 2 {
			continue
		}
		report.ExactGroups = append(report.ExactGroups, model.DuplicateGroup{
			ID:            model.GenerateUUID(),
			RunID:         report.RunID,
			NormalizedURL: u,
			MatchType:     model.MatchExact,
			Similarity:    1.0,
			CreatedAt:     now,
			Members:       members,
		})
	}

	// Similar pass over distinct normalized URLs only.
	for i, urlA := range uniqueURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if onProgress != nil && i%10 == 0 {
			onProgress(i, len(uniqueURLs), "Finding similar URLs...")
		}

		for _, urlB := range uniqueURLs[i+1:] {
			similarity := urlnorm.Similarity(urlA, urlB)
			// Exact matches are reported by the exact pass only.
			if similarity < threshold || similarity >= 1.0 {
				continue
			}

			members := make([]model.Bookmark, 0, len(byURL[urlA])+len(byURL[urlB]))
			members = append(members, byURL[urlA]...)
			members = append(members, byURL[urlB]...)

			report.SimilarGroups = append(report.SimilarGroups, model.DuplicateGroup{
				ID:            model.GenerateUUID(),
				RunID:         report.RunID,
				NormalizedURL: urlA + " <-> " + urlB,
				MatchType:     model.MatchSimilar,
				Similarity:    similarity,
				CreatedAt:     now,
				Members:       members,
			})
		}
	}

	if onProgress != nil {
		onProgress(len(uniqueURLs), len(uniqueURLs), "Complete")
	}
	return report, nil
}

// PreferAlive picks the member of a group to keep: the first with no
// dead-link record, falling back to the first member. It is a presentation
// heuristic layered on persisted scan results; callers may substitute any
// function of the same shape.
func PreferAlive(members []model.Bookmark, dead map[string]bool) *model.Bookmark {
	if len(members) == 0 {
		return nil
	}
	for i := range members {
		if !dead[members[i].ID] {
			return &members[i]
		}
	}
	return &members[0]
}
