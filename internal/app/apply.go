package app

import (
	"fmt"

	"github.com/nikbrunner/bmsweep/internal/storage"
	"github.com/nikbrunner/bmsweep/internal/sweep"
)

// ApplyOptions configures how a plan is executed.
type ApplyOptions struct {
	CreateBackup bool
	// PruneStore also deletes the local rows, but only for bookmarks
	// whose profile rewrite succeeded, plus the unplannable entries that
	// exist nowhere else.
	PruneStore bool
	// OnResult receives each profile's outcome; err and result are
	// mutually exclusive.
	OnResult func(req sweep.Request, result *sweep.Result, err error)
}

// ApplySummary aggregates what ApplyPlan did.
type ApplySummary struct {
	Swept  int
	Pruned int
	Errors []string
}

// ApplyPlan rewrites every profile in the plan. A failed rewrite is
// absorbed into the summary and leaves that profile's local rows alone;
// pruning covers only successfully swept targets.
func (a *App) ApplyPlan(store *storage.Store, plan *Plan, opts ApplyOptions) (*ApplySummary, error) {
	summary := &ApplySummary{}

	var sweptIDs []string
	for _, req := range plan.Requests {
		result, err := sweep.Apply(req, sweep.Options{
			BackupDir:    a.cfg.BackupDir,
			CreateBackup: opts.CreateBackup,
		})
		if opts.OnResult != nil {
			opts.OnResult(req, result, err)
		}
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s/%s: %v", req.Browser, req.ProfileDir, err))
			continue
		}

		summary.Swept += result.Deleted
		for _, t := range req.Targets {
			sweptIDs = append(sweptIDs, t.LocalID)
		}
	}

	if opts.PruneStore {
		ids := sweptIDs
		for _, c := range plan.Unplannable {
			ids = append(ids, c.Bookmark.ID)
		}
		if err := store.DeleteBookmarks(ids); err != nil {
			return nil, fmt.Errorf("pruning store: %w", err)
		}
		summary.Pruned = len(ids)
	}
	return summary, nil
}
