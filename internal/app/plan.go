package app

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/nikbrunner/bmsweep/internal/dupes"
	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/nikbrunner/bmsweep/internal/storage"
	"github.com/nikbrunner/bmsweep/internal/sweep"
)

// PlanOptions selects which persisted scans feed the deletion plan.
type PlanOptions struct {
	FromDeadLinks  bool
	FromDuplicates bool
	// BookmarkIDs adds explicitly chosen local bookmark IDs.
	BookmarkIDs []string
	// KeepPicker chooses the member of each duplicate group to keep.
	// Nil means dupes.PreferAlive.
	KeepPicker func(members []model.Bookmark, dead map[string]bool) *model.Bookmark
}

// Candidate is one bookmark the plan wants gone, with the local row kept
// around so the store rows can be pruned after a successful sweep.
type Candidate struct {
	Bookmark model.Bookmark
	Reason   string
}

// Plan is the assembled deletion work: one sweep request per affected
// profile, plus local-only entries that have no snapshot to rewrite.
type Plan struct {
	Requests []sweep.Request
	// Candidates holds every planned deletion keyed by local bookmark ID.
	Candidates map[string]Candidate
	// Unplannable are manual entries (no profile or browser ID); they can
	// only be deleted from the local store.
	Unplannable []Candidate
}

// LocalIDs returns the local bookmark IDs of every plannable candidate.
func (p *Plan) LocalIDs() []string {
	ids := make([]string, 0, len(p.Candidates))
	for id := range p.Candidates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalTargets counts bookmarks across all requests.
func (p *Plan) TotalTargets() int {
	n := 0
	for _, req := range p.Requests {
		n += len(req.Targets)
	}
	return n
}

// PlanFromScans builds per-profile deletion requests from the latest
// persisted scans. Dead-link candidates come from the most recent
// dead-link run; duplicate candidates from the most recent duplicate run,
// keeping one member per group via the keep picker. A bookmark flagged by
// both scans is planned once, under the first reason encountered.
func (a *App) PlanFromScans(store *storage.Store, opts PlanOptions) (*Plan, error) {
	plan := &Plan{Candidates: map[string]Candidate{}}

	deadByBookmark, err := latestDeadMap(store)
	if err != nil {
		return nil, err
	}

	if opts.FromDeadLinks {
		for id := range deadByBookmark {
			b, err := store.GetBookmark(id)
			if err != nil {
				return nil, err
			}
			if b == nil {
				continue
			}
			addCandidate(plan, *b, sweep.ReasonDeadLink)
		}
	}

	if opts.FromDuplicates {
		if err := a.planDuplicates(store, plan, deadByBookmark, opts.KeepPicker); err != nil {
			return nil, err
		}
	}

	for _, id := range opts.BookmarkIDs {
		b, err := store.GetBookmark(id)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, fmt.Errorf("bookmark not found: %s", id)
		}
		addCandidate(plan, *b, "manual")
	}

	if err := a.assembleRequests(store, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func latestDeadMap(store *storage.Store) (map[string]bool, error) {
	runID, err := store.LatestDeadLinkRunID()
	if err != nil {
		return nil, err
	}
	dead := map[string]bool{}
	if runID == "" {
		return dead, nil
	}

	records, err := store.DeadLinksForRun(runID)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		dead[r.BookmarkID] = true
	}
	return dead, nil
}

func (a *App) planDuplicates(store *storage.Store, plan *Plan, dead map[string]bool, keepPicker func([]model.Bookmark, map[string]bool) *model.Bookmark) error {
	if keepPicker == nil {
		keepPicker = dupes.PreferAlive
	}

	runID, err := store.LatestDuplicateRunID("")
	if err != nil {
		return err
	}
	if runID == "" {
		return nil
	}

	groups, err := store.DuplicateGroupsForRun(runID)
	if err != nil {
		return err
	}

	for _, group := range groups {
		keep := keepPicker(group.Members, dead)
		if keep == nil {
			continue
		}

		reason := sweep.ReasonExactDuplicate
		if group.MatchType == model.MatchSimilar {
			reason = sweep.ReasonSimilarDuplicate
		}

		for _, member := range group.Members {
			if member.ID == keep.ID {
				continue
			}
			addCandidate(plan, member, reason)
		}
	}
	return nil
}

func addCandidate(plan *Plan, b model.Bookmark, reason string) {
	if _, exists := plan.Candidates[b.ID]; exists {
		return
	}
	plan.Candidates[b.ID] = Candidate{Bookmark: b, Reason: reason}
}

// assembleRequests groups plannable candidates by profile and joins each
// profile to its snapshot path. Candidates without profile or browser IDs
// move to Unplannable.
func (a *App) assembleRequests(store *storage.Store, plan *Plan) error {
	byProfile := map[string][]Candidate{}

	for id, c := range plan.Candidates {
		if c.Bookmark.ProfileID == nil || c.Bookmark.BrowserID == nil {
			plan.Unplannable = append(plan.Unplannable, c)
			delete(plan.Candidates, id)
			continue
		}
		byProfile[*c.Bookmark.ProfileID] = append(byProfile[*c.Bookmark.ProfileID], c)
	}

	profileIDs := make([]string, 0, len(byProfile))
	for id := range byProfile {
		profileIDs = append(profileIDs, id)
	}
	sort.Strings(profileIDs)

	for _, profileID := range profileIDs {
		profile, err := store.GetProfile(profileID)
		if err != nil {
			return err
		}
		if profile == nil {
			return fmt.Errorf("profile not found: %s", profileID)
		}

		candidates := byProfile[profileID]
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].Bookmark.ID < candidates[j].Bookmark.ID
		})

		req := sweep.Request{
			Browser:       profile.Browser,
			ProfileDir:    profile.ProfileDir,
			BookmarksPath: filepath.Join(profile.Path, "Bookmarks"),
		}
		for _, c := range candidates {
			req.Targets = append(req.Targets, sweep.Target{
				BrowserID: *c.Bookmark.BrowserID,
				LocalID:   c.Bookmark.ID,
				URL:       c.Bookmark.URL,
				Title:     c.Bookmark.Title,
				Reason:    c.Reason,
			})
		}
		plan.Requests = append(plan.Requests, req)
	}
	return nil
}
