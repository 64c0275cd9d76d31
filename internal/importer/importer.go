// Package importer merges parsed browser snapshots into the persistent
// store. The merge is idempotent: re-importing unchanged upstream data adds
// nothing, and items imported once are never overwritten (append-only).
package importer

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/nikbrunner/bmsweep/internal/browser"
	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/nikbrunner/bmsweep/internal/snapshot"
	"github.com/nikbrunner/bmsweep/internal/storage"
)

// Phase identifies which pass of an import a progress report belongs to.
type Phase string

const (
	PhaseFolders   Phase = "folders"
	PhaseBookmarks Phase = "bookmarks"
)

// ProgressFunc receives a report after each processed item. label is the
// current item's name or title.
type ProgressFunc func(phase Phase, current, total int, label string)

// Result holds the outcome of importing one profile. Per-profile failures
// are absorbed into Errors; the run keeps whatever was processed before.
type Result struct {
	Profile          model.BrowserProfile
	FoldersAdded     int
	FoldersSkipped   int
	BookmarksAdded   int
	BookmarksSkipped int
	Errors           []string
}

// ImportProfile merges one detected profile's snapshot into the store.
//
// Folders are processed parents-first (sorted by path depth) so a child's
// parent always has a local key by the time it is needed. Lookups go by the
// natural import key (profile, browser node ID); a hit is skipped without
// touching the stored row, so local edits survive re-imports. Cancellation
// is checked between items; each insert commits on its own.
func ImportProfile(ctx context.Context, store *storage.Store, detected browser.Profile, onProgress ProgressFunc) *Result {
	started := time.Now()

	profile, err := resolveProfile(store, detected)
	if err != nil {
		return &Result{Errors: []string{err.Error()}}
	}

	result := &Result{Profile: *profile}

	// The file may have vanished between detection and import.
	if _, err := os.Stat(detected.BookmarksPath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("bookmarks file not found: %s", detected.BookmarksPath))
		recordSyncRun(store, profile.ID, result, started)
		return result
	}

	tree, err := snapshot.Parse(detected.BookmarksPath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("error parsing bookmarks file: %v", err))
		recordSyncRun(store, profile.ID, result, started)
		return result
	}

	// browser folder ID -> local folder ID, built as folders are resolved.
	localIDs := make(map[string]string)

	if err := importFolders(ctx, store, profile.ID, tree.Folders, localIDs, result, onProgress); err != nil {
		result.Errors = append(result.Errors, err.Error())
		recordSyncRun(store, profile.ID, result, started)
		return result
	}

	if err := importBookmarks(ctx, store, profile.ID, tree.Bookmarks, localIDs, result, onProgress); err != nil {
		result.Errors = append(result.Errors, err.Error())
		recordSyncRun(store, profile.ID, result, started)
		return result
	}

	if err := store.TouchProfileSynced(profile.ID, time.Now()); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	recordSyncRun(store, profile.ID, result, started)
	return result
}

// ImportAll imports every given profile sequentially. One profile's failure
// never aborts its siblings.
func ImportAll(ctx context.Context, store *storage.Store, profiles []browser.Profile, onProgress ProgressFunc) []*Result {
	results := make([]*Result, 0, len(profiles))
	for _, p := range profiles {
		if ctx.Err() != nil {
			break
		}
		results = append(results, ImportProfile(ctx, store, p, onProgress))
	}
	return results
}

// resolveProfile finds or creates the profile row, refreshing its mutable
// descriptor fields on every import.
func resolveProfile(store *storage.Store, detected browser.Profile) (*model.BrowserProfile, error) {
	existing, err := store.FindProfile(detected.Browser, detected.Dir)
	if err != nil {
		return nil, err
	}

	var displayName *string
	if detected.DisplayName != "" {
		displayName = &detected.DisplayName
	}

	if existing != nil {
		if err := store.UpdateProfileMeta(existing.ID, displayName, detected.Path); err != nil {
			return nil, err
		}
		existing.DisplayName = displayName
		existing.Path = detected.Path
		return existing, nil
	}

	profile := model.NewBrowserProfile(model.NewBrowserProfileParams{
		Browser:     detected.Browser,
		ProfileDir:  detected.Dir,
		DisplayName: displayName,
		Path:        detected.Path,
	})
	if err := store.InsertProfile(profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func importFolders(ctx context.Context, store *storage.Store, profileID string, folders []snapshot.Folder, localIDs map[string]string, result *Result, onProgress ProgressFunc) error {
	// Parents before children: sort by path depth ascending.
	sorted := make([]snapshot.Folder, len(folders))
	copy(sorted, folders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.Count(sorted[i].Path, "/") < strings.Count(sorted[j].Path, "/")
	})

	total := len(sorted)
	for i, f := range sorted {
		if err := ctx.Err(); err != nil {
			return err
		}

		existing, err := store.FindFolderByBrowserID(profileID, f.BrowserID)
		if err != nil {
			return err
		}

		if existing != nil {
			localIDs[f.BrowserID] = existing.ID
			result.FoldersSkipped++
		} else {
			var parentID *string
			if f.ParentBrowserID != nil {
				if local, ok := localIDs[*f.ParentBrowserID]; ok {
					parentID = &local
				}
			}

			browserID := f.BrowserID
			folder := model.NewFolder(model.NewFolderParams{
				Name:        f.Name,
				ParentID:    parentID,
				ProfileID:   &profileID,
				BrowserID:   &browserID,
				BrowserPath: f.Path,
				Position:    f.Position,
			})
			if err := store.InsertFolder(folder); err != nil {
				return err
			}
			localIDs[f.BrowserID] = folder.ID
			result.FoldersAdded++
		}

		if onProgress != nil {
			onProgress(PhaseFolders, i+1, total, f.Name)
		}
	}
	return nil
}

func importBookmarks(ctx context.Context, store *storage.Store, profileID string, bookmarks []snapshot.Bookmark, localIDs map[string]string, result *Result, onProgress ProgressFunc) error {
	total := len(bookmarks)
	for i, b := range bookmarks {
		if err := ctx.Err(); err != nil {
			return err
		}

		existing, err := store.FindBookmarkByBrowserID(profileID, b.BrowserID)
		if err != nil {
			return err
		}

		if existing != nil {
			result.BookmarksSkipped++
		} else {
			var folderID *string
			if b.ParentBrowserID != nil {
				if local, ok := localIDs[*b.ParentBrowserID]; ok {
					folderID = &local
				}
			}

			browserID := b.BrowserID
			bookmark := model.NewBookmark(model.NewBookmarkParams{
				URL:            b.URL,
				Title:          b.Title,
				FolderID:       folderID,
				ProfileID:      &profileID,
				BrowserID:      &browserID,
				BrowserAddedAt: b.AddedAt,
				Position:       b.Position,
			})
			if err := store.InsertBookmark(bookmark); err != nil {
				return err
			}
			result.BookmarksAdded++
		}

		if onProgress != nil {
			onProgress(PhaseBookmarks, i+1, total, b.Title)
		}
	}
	return nil
}

func recordSyncRun(store *storage.Store, profileID string, result *Result, started time.Time) {
	status := model.SyncStatusSuccess
	var errMsg *string
	if len(result.Errors) > 0 {
		status = model.SyncStatusPartial
		if result.FoldersAdded == 0 && result.FoldersSkipped == 0 &&
			result.BookmarksAdded == 0 && result.BookmarksSkipped == 0 {
			status = model.SyncStatusFailed
		}
		joined := strings.Join(result.Errors, "; ")
		errMsg = &joined
	}

	finished := time.Now()
	run := model.SyncRun{
		ID:               model.GenerateUUID(),
		ProfileID:        &profileID,
		Status:           status,
		FoldersAdded:     result.FoldersAdded,
		FoldersSkipped:   result.FoldersSkipped,
		BookmarksAdded:   result.BookmarksAdded,
		BookmarksSkipped: result.BookmarksSkipped,
		ErrorMessage:     errMsg,
		StartedAt:        started,
		FinishedAt:       &finished,
	}
	// Recording history must not fail the import itself.
	if err := store.InsertSyncRun(run); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}
}
