package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/nikbrunner/bmsweep/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "bmsweep.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func stringPtr(s string) *string { return &s }

func seedProfile(t *testing.T, s *storage.Store) model.BrowserProfile {
	t.Helper()
	p := model.NewBrowserProfile(model.NewBrowserProfileParams{
		Browser:    "Chrome",
		ProfileDir: "Default",
		Path:       "/home/user/.config/google-chrome/Default",
	})
	if err := s.InsertProfile(p); err != nil {
		t.Fatalf("failed to insert profile: %v", err)
	}
	return p
}

func seedBookmark(t *testing.T, s *storage.Store, p model.BrowserProfile, url, title, browserID string) model.Bookmark {
	t.Helper()
	var bid *string
	if browserID != "" {
		bid = &browserID
	}
	b := model.NewBookmark(model.NewBookmarkParams{
		URL:       url,
		Title:     title,
		ProfileID: &p.ID,
		BrowserID: bid,
	})
	if err := s.InsertBookmark(b); err != nil {
		t.Fatalf("failed to insert bookmark: %v", err)
	}
	return b
}

func TestStore_ProfileRoundTrip(t *testing.T) {
	s := openStore(t)

	p := seedProfile(t, s)

	found, err := s.FindProfile("Chrome", "Default")
	if err != nil {
		t.Fatalf("failed to find profile: %v", err)
	}
	if found == nil {
		t.Fatal("expected profile, got nil")
	}
	if found.ID != p.ID {
		t.Errorf("ID mismatch: got %q, want %q", found.ID, p.ID)
	}
	if !found.Enabled {
		t.Error("expected profile enabled")
	}
	if found.LastSyncedAt != nil {
		t.Error("expected nil last synced for fresh profile")
	}

	missing, err := s.FindProfile("Chrome", "Profile 9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown profile, got %+v", missing)
	}
}

func TestStore_TouchProfileSynced(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)

	when := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	if err := s.TouchProfileSynced(p.ID, when); err != nil {
		t.Fatalf("failed to touch: %v", err)
	}

	found, _ := s.FindProfile("Chrome", "Default")
	if found.LastSyncedAt == nil || !found.LastSyncedAt.Equal(when) {
		t.Errorf("expected last synced %v, got %v", when, found.LastSyncedAt)
	}
}

func TestStore_DeleteProfileCascades(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)

	folder := model.NewFolder(model.NewFolderParams{
		Name:      "Work",
		ProfileID: &p.ID,
		BrowserID: stringPtr("10"),
	})
	if err := s.InsertFolder(folder); err != nil {
		t.Fatalf("failed to insert folder: %v", err)
	}
	b := seedBookmark(t, s, p, "https://example.com", "Example", "11")

	if err := s.DeleteProfile(p.ID); err != nil {
		t.Fatalf("failed to delete profile: %v", err)
	}

	folders, err := s.ListFolders(nil)
	if err != nil {
		t.Fatalf("failed to list folders: %v", err)
	}
	if len(folders) != 0 {
		t.Errorf("expected folders cascaded, got %d", len(folders))
	}

	// The bookmark survives with its profile reference nullified.
	got, err := s.GetBookmark(b.ID)
	if err != nil {
		t.Fatalf("failed to get bookmark: %v", err)
	}
	if got == nil {
		t.Fatal("expected bookmark to survive profile deletion")
	}
	if got.ProfileID != nil {
		t.Errorf("expected nil profile ref, got %v", *got.ProfileID)
	}
}

func TestStore_DeleteFolderCascadesAndOrphans(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)

	parent := model.NewFolder(model.NewFolderParams{Name: "A", ProfileID: &p.ID, BrowserID: stringPtr("1")})
	if err := s.InsertFolder(parent); err != nil {
		t.Fatalf("failed to insert parent: %v", err)
	}
	child := model.NewFolder(model.NewFolderParams{Name: "B", ParentID: &parent.ID, ProfileID: &p.ID, BrowserID: stringPtr("2")})
	if err := s.InsertFolder(child); err != nil {
		t.Fatalf("failed to insert child: %v", err)
	}

	b := model.NewBookmark(model.NewBookmarkParams{
		URL: "https://example.com", Title: "x", FolderID: &child.ID, ProfileID: &p.ID,
	})
	if err := s.InsertBookmark(b); err != nil {
		t.Fatalf("failed to insert bookmark: %v", err)
	}

	if err := s.DeleteFolder(parent.ID); err != nil {
		t.Fatalf("failed to delete folder: %v", err)
	}

	folders, _ := s.ListFolders(nil)
	if len(folders) != 0 {
		t.Errorf("expected descendant folders cascaded, got %d", len(folders))
	}

	got, _ := s.GetBookmark(b.ID)
	if got == nil {
		t.Fatal("expected bookmark to survive folder deletion")
	}
	if got.FolderID != nil {
		t.Errorf("expected orphaned bookmark, got folder ref %v", *got.FolderID)
	}
}

func TestStore_InsertBookmarkWithoutURL(t *testing.T) {
	s := openStore(t)

	b := model.NewBookmark(model.NewBookmarkParams{Title: "no url"})
	err := s.InsertBookmark(b)
	if !errors.Is(err, storage.ErrMissingURL) {
		t.Errorf("expected ErrMissingURL, got %v", err)
	}
}

func TestStore_FindBookmarkByBrowserID(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)
	b := seedBookmark(t, s, p, "https://example.com", "Example", "42")

	found, err := s.FindBookmarkByBrowserID(p.ID, "42")
	if err != nil {
		t.Fatalf("failed to find: %v", err)
	}
	if found == nil || found.ID != b.ID {
		t.Fatalf("expected bookmark %q, got %+v", b.ID, found)
	}

	missing, err := s.FindBookmarkByBrowserID(p.ID, "999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown browser ID, got %+v", missing)
	}
}

func TestStore_DeadLinkRuns(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)
	b := seedBookmark(t, s, p, "https://dead.example.com", "Dead", "1")

	status := 404
	older := model.DeadLink{
		ID: model.GenerateUUID(), BookmarkID: b.ID, RunID: "run00001",
		StatusCode: &status, ErrorMessage: "HTTP 404",
		CheckedAt: time.Now().Add(-time.Hour),
	}
	newer := model.DeadLink{
		ID: model.GenerateUUID(), BookmarkID: b.ID, RunID: "run00002",
		ErrorMessage: "DNS failure",
		CheckedAt:    time.Now(),
	}
	for _, d := range []model.DeadLink{older, newer} {
		if err := s.InsertDeadLink(d); err != nil {
			t.Fatalf("failed to insert dead link: %v", err)
		}
	}

	latest, err := s.LatestDeadLinkRunID()
	if err != nil {
		t.Fatalf("failed to get latest run: %v", err)
	}
	if latest != "run00002" {
		t.Errorf("expected latest run run00002, got %q", latest)
	}

	// Older runs are retained.
	records, err := s.DeadLinksForRun("run00001")
	if err != nil {
		t.Fatalf("failed to load run: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].StatusCode == nil || *records[0].StatusCode != 404 {
		t.Errorf("expected status 404, got %v", records[0].StatusCode)
	}

	records, _ = s.DeadLinksForRun("run00002")
	if len(records) != 1 || records[0].StatusCode != nil {
		t.Errorf("expected transport failure with nil status, got %+v", records)
	}
}

func TestStore_DuplicateGroups(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)
	b1 := seedBookmark(t, s, p, "https://example.com/a", "A", "1")
	b2 := seedBookmark(t, s, p, "https://example.com/a/", "A again", "2")

	g := model.DuplicateGroup{
		ID:            model.GenerateUUID(),
		RunID:         "run00001",
		NormalizedURL: "https://example.com/a",
		MatchType:     model.MatchExact,
		Similarity:    1.0,
		CreatedAt:     time.Now(),
		Members:       []model.Bookmark{b1, b2},
	}
	if err := s.InsertDuplicateGroup(g); err != nil {
		t.Fatalf("failed to insert group: %v", err)
	}

	latest, err := s.LatestDuplicateRunID(model.MatchExact)
	if err != nil {
		t.Fatalf("failed to get latest run: %v", err)
	}
	if latest != "run00001" {
		t.Errorf("expected run00001, got %q", latest)
	}

	latestSimilar, _ := s.LatestDuplicateRunID(model.MatchSimilar)
	if latestSimilar != "" {
		t.Errorf("expected no similar run, got %q", latestSimilar)
	}

	groups, err := s.DuplicateGroupsForRun("run00001")
	if err != nil {
		t.Fatalf("failed to load groups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(groups[0].Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(groups[0].Members))
	}
	if groups[0].Similarity != 1.0 {
		t.Errorf("expected similarity 1.0, got %v", groups[0].Similarity)
	}
}

func TestStore_SearchBookmarks(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)
	seedBookmark(t, s, p, "https://go.dev/doc", "Go Documentation", "1")
	seedBookmark(t, s, p, "https://example.com/recipes", "Pasta Recipes", "2")

	results, err := s.SearchBookmarks("documentation")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Go Documentation" {
		t.Fatalf("expected Go Documentation, got %+v", results)
	}

	// Prefix token search.
	results, err = s.SearchBookmarks("recip")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Pasta Recipes" {
		t.Fatalf("expected Pasta Recipes, got %+v", results)
	}

	// Raw substring falls through to the LIKE scan.
	results, err = s.SearchBookmarks("go.dev/doc")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://go.dev/doc" {
		t.Fatalf("expected go.dev bookmark, got %+v", results)
	}

	results, err = s.SearchBookmarks("zzzzz")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestStore_SearchReflectsDeletes(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)
	b := seedBookmark(t, s, p, "https://gone.example.com", "Ephemeral", "1")

	if err := s.DeleteBookmarks([]string{b.ID}); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	results, err := s.SearchBookmarks("ephemeral")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected FTS index to drop deleted row, got %d results", len(results))
	}
}

func TestStore_Tags(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)
	b := seedBookmark(t, s, p, "https://example.com", "Example", "1")

	tag, err := s.EnsureTag("  Reading  ")
	if err != nil {
		t.Fatalf("failed to ensure tag: %v", err)
	}
	if tag.Name != "reading" {
		t.Errorf("expected normalized name, got %q", tag.Name)
	}

	again, err := s.EnsureTag("reading")
	if err != nil {
		t.Fatalf("failed to ensure existing tag: %v", err)
	}
	if again.ID != tag.ID {
		t.Errorf("expected same tag row, got %q vs %q", again.ID, tag.ID)
	}

	if err := s.TagBookmark(b.ID, tag.ID); err != nil {
		t.Fatalf("failed to tag: %v", err)
	}
	if err := s.TagBookmark(b.ID, tag.ID); err != nil {
		t.Fatalf("re-tagging should be a no-op: %v", err)
	}

	names, err := s.TagsForBookmark(b.ID)
	if err != nil {
		t.Fatalf("failed to list tags: %v", err)
	}
	if len(names) != 1 || names[0] != "reading" {
		t.Errorf("unexpected tags: %v", names)
	}
}

func TestStore_SyncRuns(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)

	finished := time.Now()
	run := model.SyncRun{
		ID:             model.GenerateUUID(),
		ProfileID:      &p.ID,
		Status:         model.SyncStatusSuccess,
		FoldersAdded:   2,
		BookmarksAdded: 5,
		StartedAt:      finished.Add(-time.Second),
		FinishedAt:     &finished,
	}
	if err := s.InsertSyncRun(run); err != nil {
		t.Fatalf("failed to insert sync run: %v", err)
	}

	runs, err := s.ListSyncRuns(10)
	if err != nil {
		t.Fatalf("failed to list sync runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].BookmarksAdded != 5 || runs[0].Status != model.SyncStatusSuccess {
		t.Errorf("unexpected run: %+v", runs[0])
	}
}

func TestStore_BookmarkLocations(t *testing.T) {
	s := openStore(t)
	p := seedProfile(t, s)

	folder := model.NewFolder(model.NewFolderParams{
		Name: "Work", ProfileID: &p.ID, BrowserID: stringPtr("10"), BrowserPath: "Bar/Work",
	})
	if err := s.InsertFolder(folder); err != nil {
		t.Fatalf("failed to insert folder: %v", err)
	}

	b := model.NewBookmark(model.NewBookmarkParams{
		URL: "https://example.com", Title: "Example",
		FolderID: &folder.ID, ProfileID: &p.ID, BrowserID: stringPtr("11"),
	})
	if err := s.InsertBookmark(b); err != nil {
		t.Fatalf("failed to insert bookmark: %v", err)
	}

	locations, err := s.BookmarkLocations()
	if err != nil {
		t.Fatalf("failed to load locations: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locations))
	}

	loc := locations[0]
	if loc.FolderPath == nil || *loc.FolderPath != "Bar/Work" {
		t.Errorf("expected folder path Bar/Work, got %v", loc.FolderPath)
	}
	if loc.Browser == nil || *loc.Browser != "Chrome" {
		t.Errorf("expected browser Chrome, got %v", loc.Browser)
	}
}

func TestStore_BackupTo(t *testing.T) {
	s := openStore(t)
	seedProfile(t, s)

	dir := t.TempDir()
	path, err := s.BackupTo(dir)
	if err != nil {
		t.Fatalf("failed to back up: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty backup")
	}
	if filepath.Dir(path) != dir {
		t.Errorf("backup written outside dir: %s", path)
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bmsweep.db")

	s, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	p := seedProfile(t, s)
	seedBookmark(t, s, p, "https://example.com", "Example", "1")
	s.Close()

	s2, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s2.Close()

	bookmarks, err := s2.ListBookmarks(nil)
	if err != nil {
		t.Fatalf("failed to list bookmarks: %v", err)
	}
	if len(bookmarks) != 1 {
		t.Errorf("expected 1 bookmark after reopen, got %d", len(bookmarks))
	}
}
