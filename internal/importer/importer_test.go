package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/bmsweep/internal/browser"
	"github.com/nikbrunner/bmsweep/internal/importer"
	"github.com/nikbrunner/bmsweep/internal/storage"
)

const snapshotA = `{
  "roots": {
    "bookmark_bar": {
      "type": "folder", "id": "1", "name": "Bookmarks bar",
      "children": [
        {
          "type": "folder", "id": "10", "name": "Work",
          "children": [
            {"type": "url", "id": "11", "name": "Tracker", "url": "https://tracker.example.com", "date_added": "13349678400000000"},
            {"type": "url", "id": "12", "name": "Wiki", "url": "https://wiki.example.com", "date_added": "13349678400000000"}
          ]
        },
        {"type": "url", "id": "13", "name": "News", "url": "https://news.example.com", "date_added": "13349678400000000"}
      ]
    }
  }
}`

// snapshotA plus one new url node under the existing Work folder.
const snapshotAPrime = `{
  "roots": {
    "bookmark_bar": {
      "type": "folder", "id": "1", "name": "Bookmarks bar",
      "children": [
        {
          "type": "folder", "id": "10", "name": "Work",
          "children": [
            {"type": "url", "id": "11", "name": "Tracker", "url": "https://tracker.example.com", "date_added": "13349678400000000"},
            {"type": "url", "id": "12", "name": "Wiki", "url": "https://wiki.example.com", "date_added": "13349678400000000"},
            {"type": "url", "id": "14", "name": "CI", "url": "https://ci.example.com", "date_added": "13349678400000000"}
          ]
        },
        {"type": "url", "id": "13", "name": "News", "url": "https://news.example.com", "date_added": "13349678400000000"}
      ]
    }
  }
}`

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "bmsweep.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeProfile writes a snapshot into a fresh profile dir and returns the
// matching descriptor.
func fakeProfile(t *testing.T, content string) browser.Profile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Bookmarks")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write snapshot: %v", err)
		}
	}
	return browser.Profile{
		Browser:       "Chrome",
		Dir:           "Default",
		Path:          dir,
		BookmarksPath: path,
	}
}

func TestImportProfile_FirstImport(t *testing.T) {
	s := openStore(t)
	p := fakeProfile(t, snapshotA)

	result := importer.ImportProfile(context.Background(), s, p, nil)

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.FoldersAdded != 1 || result.FoldersSkipped != 0 {
		t.Errorf("folders: added=%d skipped=%d, want 1/0", result.FoldersAdded, result.FoldersSkipped)
	}
	if result.BookmarksAdded != 3 || result.BookmarksSkipped != 0 {
		t.Errorf("bookmarks: added=%d skipped=%d, want 3/0", result.BookmarksAdded, result.BookmarksSkipped)
	}

	profile, err := s.FindProfile("Chrome", "Default")
	if err != nil || profile == nil {
		t.Fatalf("profile not stored: %v", err)
	}
	if profile.LastSyncedAt == nil {
		t.Error("expected last synced timestamp to be set")
	}

	// The Work bookmarks hang off the imported folder; News sits at root.
	bookmarks, _ := s.ListBookmarks(&profile.ID)
	if len(bookmarks) != 3 {
		t.Fatalf("expected 3 stored bookmarks, got %d", len(bookmarks))
	}
	for _, b := range bookmarks {
		switch *b.BrowserID {
		case "11", "12":
			if b.FolderID == nil {
				t.Errorf("bookmark %s: expected folder ref", *b.BrowserID)
			}
		case "13":
			if b.FolderID != nil {
				t.Errorf("bookmark 13: expected nil folder ref")
			}
		}
	}
}

func TestImportProfile_Idempotent(t *testing.T) {
	s := openStore(t)
	p := fakeProfile(t, snapshotA)

	importer.ImportProfile(context.Background(), s, p, nil)
	second := importer.ImportProfile(context.Background(), s, p, nil)

	if second.FoldersAdded != 0 || second.BookmarksAdded != 0 {
		t.Errorf("second import added rows: folders=%d bookmarks=%d",
			second.FoldersAdded, second.BookmarksAdded)
	}
	if second.FoldersSkipped != 1 || second.BookmarksSkipped != 3 {
		t.Errorf("second import: skipped folders=%d bookmarks=%d, want 1/3",
			second.FoldersSkipped, second.BookmarksSkipped)
	}

	profile, _ := s.FindProfile("Chrome", "Default")
	count, _ := s.CountBookmarksByProfile(profile.ID)
	if count != 3 {
		t.Errorf("expected row count unchanged at 3, got %d", count)
	}
}

func TestImportProfile_Incremental(t *testing.T) {
	s := openStore(t)
	p := fakeProfile(t, snapshotA)

	importer.ImportProfile(context.Background(), s, p, nil)

	profile, _ := s.FindProfile("Chrome", "Default")
	before, _ := s.ListBookmarks(&profile.ID)
	beforeByBrowserID := map[string]string{}
	for _, b := range before {
		beforeByBrowserID[*b.BrowserID] = b.ID
	}

	if err := os.WriteFile(p.BookmarksPath, []byte(snapshotAPrime), 0644); err != nil {
		t.Fatalf("failed to update snapshot: %v", err)
	}

	result := importer.ImportProfile(context.Background(), s, p, nil)

	if result.FoldersAdded != 0 {
		t.Errorf("expected 0 folders added, got %d", result.FoldersAdded)
	}
	if result.BookmarksAdded != 1 {
		t.Errorf("expected exactly 1 bookmark added, got %d", result.BookmarksAdded)
	}

	after, _ := s.ListBookmarks(&profile.ID)
	if len(after) != 4 {
		t.Fatalf("expected 4 bookmarks, got %d", len(after))
	}
	for _, b := range after {
		if prevID, ok := beforeByBrowserID[*b.BrowserID]; ok && prevID != b.ID {
			t.Errorf("bookmark %s changed local key: %q -> %q", *b.BrowserID, prevID, b.ID)
		}
	}

	// The new bookmark lands in the existing Work folder.
	for _, b := range after {
		if *b.BrowserID == "14" && b.FolderID == nil {
			t.Error("new bookmark should resolve its folder via the existing row")
		}
	}
}

func TestImportProfile_SkipPreservesLocalEdits(t *testing.T) {
	s := openStore(t)
	p := fakeProfile(t, snapshotA)

	importer.ImportProfile(context.Background(), s, p, nil)

	profile, _ := s.FindProfile("Chrome", "Default")
	tracker, err := s.FindBookmarkByBrowserID(profile.ID, "11")
	if err != nil || tracker == nil {
		t.Fatalf("tracker bookmark missing: %v", err)
	}
	notes := "keep me"
	if err := s.UpdateBookmarkNotes(tracker.ID, &notes); err != nil {
		t.Fatalf("failed to set notes: %v", err)
	}

	importer.ImportProfile(context.Background(), s, p, nil)

	again, _ := s.FindBookmarkByBrowserID(profile.ID, "11")
	if again.Notes == nil || *again.Notes != "keep me" {
		t.Errorf("local notes lost on re-import: %v", again.Notes)
	}
}

func TestImportProfile_MissingSnapshot(t *testing.T) {
	s := openStore(t)
	p := fakeProfile(t, "")

	result := importer.ImportProfile(context.Background(), s, p, nil)

	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if result.BookmarksAdded != 0 {
		t.Errorf("expected nothing imported, got %d", result.BookmarksAdded)
	}

	// The failure is recorded in sync history.
	runs, _ := s.ListSyncRuns(5)
	if len(runs) != 1 || runs[0].Status != "failed" {
		t.Errorf("expected failed sync run, got %+v", runs)
	}
}

func TestImportProfile_MalformedSnapshot(t *testing.T) {
	s := openStore(t)
	p := fakeProfile(t, "{broken json")

	result := importer.ImportProfile(context.Background(), s, p, nil)

	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
}

func TestImportAll_FailureDoesNotAbortSiblings(t *testing.T) {
	s := openStore(t)

	broken := fakeProfile(t, "{broken")
	good := fakeProfile(t, snapshotA)
	good.Dir = "Profile 1"

	results := importer.ImportAll(context.Background(), s, []browser.Profile{broken, good}, nil)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(results[0].Errors) == 0 {
		t.Error("expected error for broken profile")
	}
	if len(results[1].Errors) != 0 {
		t.Errorf("sibling import failed: %v", results[1].Errors)
	}
	if results[1].BookmarksAdded != 3 {
		t.Errorf("sibling import incomplete: %d bookmarks", results[1].BookmarksAdded)
	}
}

func TestImportProfile_Progress(t *testing.T) {
	s := openStore(t)
	p := fakeProfile(t, snapshotA)

	type report struct {
		phase   importer.Phase
		current int
		total   int
	}
	var reports []report
	importer.ImportProfile(context.Background(), s, p, func(phase importer.Phase, current, total int, label string) {
		reports = append(reports, report{phase, current, total})
	})

	// 1 folder + 3 bookmarks = 4 reports.
	if len(reports) != 4 {
		t.Fatalf("expected 4 progress reports, got %d", len(reports))
	}
	if reports[0].phase != importer.PhaseFolders || reports[0].total != 1 {
		t.Errorf("unexpected first report: %+v", reports[0])
	}
	last := reports[len(reports)-1]
	if last.phase != importer.PhaseBookmarks || last.current != 3 || last.total != 3 {
		t.Errorf("unexpected final report: %+v", last)
	}
}

func TestImportProfile_Cancellation(t *testing.T) {
	s := openStore(t)
	p := fakeProfile(t, snapshotA)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := importer.ImportProfile(ctx, s, p, nil)

	if result.FoldersAdded != 0 || result.BookmarksAdded != 0 {
		t.Errorf("cancelled import still added rows: %+v", result)
	}
	if len(result.Errors) == 0 {
		t.Error("expected cancellation to surface as an error string")
	}
}
