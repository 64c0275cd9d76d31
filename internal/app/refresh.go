package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nikbrunner/bmsweep/internal/deadlink"
	"github.com/nikbrunner/bmsweep/internal/dupes"
	"github.com/nikbrunner/bmsweep/internal/importer"
	"github.com/nikbrunner/bmsweep/internal/logger"
	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/nikbrunner/bmsweep/internal/storage"
)

// RefreshOptions selects which phases of the pipeline run.
type RefreshOptions struct {
	BackupStore bool
	// Fresh wipes the database after the backup; it is only honored
	// together with BackupStore.
	Fresh         bool
	SkipImport    bool
	SkipDupes     bool
	SkipDeadLinks bool
	OnProgress    func(phase, status string)
}

// RefreshSummary aggregates what every phase did.
type RefreshSummary struct {
	StoreBackupPath   string
	FreshStore        bool
	ProfilesProcessed int
	FoldersAdded      int
	BookmarksAdded    int
	BookmarksSkipped  int
	DuplicateRunID    string
	DuplicateGroups   int
	DeadLinkRunID     string
	DeadLinks         int
	URLsChecked       int
	Errors            []string
}

// Refresh runs the pipeline end to end: optional store backup, optional
// fresh start, import of every detected profile, duplicate scan, and a
// unique-URL dead-link scan. Phase failures are absorbed into the summary;
// only being unable to open the store aborts.
func (a *App) Refresh(ctx context.Context, opts RefreshOptions) (*RefreshSummary, error) {
	summary := &RefreshSummary{}
	progress := opts.OnProgress
	if progress == nil {
		progress = func(phase, status string) {}
	}

	if opts.BackupStore {
		progress("backup", "creating database backup")
		if err := a.backupStore(summary); err != nil {
			summary.Errors = append(summary.Errors, err.Error())
		} else if opts.Fresh {
			progress("backup", "creating fresh database")
			if err := a.freshStore(); err != nil {
				return nil, err
			}
			summary.FreshStore = true
		}
	}

	store, err := a.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	if !opts.SkipImport && ctx.Err() == nil {
		progress("import", "importing bookmarks from browsers")
		a.refreshImport(ctx, store, summary)
	}

	if !opts.SkipDupes && ctx.Err() == nil {
		progress("dupes", "finding duplicates")
		a.refreshDupes(ctx, store, summary)
	}

	if !opts.SkipDeadLinks && ctx.Err() == nil {
		progress("deadlinks", "checking for dead links")
		a.refreshDeadLinks(ctx, store, summary)
	}

	return summary, nil
}

func (a *App) backupStore(summary *RefreshSummary) error {
	store, err := a.OpenStore()
	if err != nil {
		return fmt.Errorf("opening store for backup: %w", err)
	}
	defer store.Close()

	path, err := store.BackupTo(a.cfg.BackupDir)
	if err != nil {
		return fmt.Errorf("backing up store: %w", err)
	}
	summary.StoreBackupPath = path
	return nil
}

func (a *App) refreshImport(ctx context.Context, store *storage.Store, summary *RefreshSummary) {
	profiles := a.DetectProfiles("")
	if len(profiles) == 0 {
		summary.Errors = append(summary.Errors, "no browser profiles found")
		return
	}

	results := importer.ImportAll(ctx, store, profiles, nil)
	for _, r := range results {
		summary.ProfilesProcessed++
		summary.FoldersAdded += r.FoldersAdded
		summary.BookmarksAdded += r.BookmarksAdded
		summary.BookmarksSkipped += r.BookmarksSkipped
		summary.Errors = append(summary.Errors, r.Errors...)

		a.log.Info("imported profile",
			logger.String("browser", r.Profile.Browser),
			logger.String("profile", r.Profile.ProfileDir),
			logger.Int("bookmarksAdded", r.BookmarksAdded),
			logger.Int("bookmarksSkipped", r.BookmarksSkipped))
	}
}

func (a *App) refreshDupes(ctx context.Context, store *storage.Store, summary *RefreshSummary) {
	bookmarks, err := store.ListBookmarks(nil)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("listing bookmarks: %v", err))
		return
	}
	if len(bookmarks) == 0 {
		return
	}

	report, err := dupes.Find(ctx, bookmarks, dupes.Options{Threshold: a.cfg.SimilarityThreshold}, nil)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("finding duplicates: %v", err))
		return
	}

	for _, group := range report.Groups() {
		if err := store.InsertDuplicateGroup(group); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("saving duplicate group: %v", err))
			continue
		}
		summary.DuplicateGroups++
	}
	summary.DuplicateRunID = report.RunID

	a.log.Info("duplicate scan finished",
		logger.String("runId", report.RunID),
		logger.Int("groups", summary.DuplicateGroups))
}

func (a *App) refreshDeadLinks(ctx context.Context, store *storage.Store, summary *RefreshSummary) {
	bookmarks, err := store.ListBookmarks(nil)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("listing bookmarks: %v", err))
		return
	}
	if len(bookmarks) == 0 {
		return
	}

	runID := model.NewRunID()
	results := deadlink.CheckUnique(ctx, bookmarks, deadlink.Options{
		Concurrency:    a.cfg.DeadLinkConcurrency,
		Timeout:        a.cfg.DeadLinkTimeout,
		ExcludeDomains: a.cfg.ExcludeDomains,
	}, func(r deadlink.Result) {
		if r.Alive {
			return
		}
		record := model.DeadLink{
			ID:         model.GenerateUUID(),
			BookmarkID: r.Bookmark.ID,
			RunID:      runID,
			CheckedAt:  time.Now(),
		}
		if r.StatusCode != 0 {
			code := r.StatusCode
			record.StatusCode = &code
		}
		record.ErrorMessage = r.Error
		if err := store.InsertDeadLink(record); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("saving dead link: %v", err))
			return
		}
		summary.DeadLinks++
	}, nil)

	summary.URLsChecked = len(results)
	summary.DeadLinkRunID = runID

	a.log.Info("dead-link scan finished",
		logger.String("runId", runID),
		logger.Int("checked", summary.URLsChecked),
		logger.Int("dead", summary.DeadLinks))
}
