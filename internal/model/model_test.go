package model_test

import (
	"testing"
	"time"

	"github.com/nikbrunner/bmsweep/internal/model"
)

func stringPtr(s string) *string { return &s }

func TestNewBookmark(t *testing.T) {
	added := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	b := model.NewBookmark(model.NewBookmarkParams{
		URL:            "https://example.com",
		Title:          "Example",
		FolderID:       stringPtr("f1"),
		ProfileID:      stringPtr("p1"),
		BrowserID:      stringPtr("42"),
		BrowserAddedAt: &added,
		Position:       3,
	})

	if b.ID == "" {
		t.Error("expected generated ID")
	}
	if b.URL != "https://example.com" || b.Title != "Example" {
		t.Errorf("unexpected fields: %+v", b)
	}
	if b.Position != 3 {
		t.Errorf("expected position 3, got %d", b.Position)
	}
	if b.BrowserAddedAt == nil || !b.BrowserAddedAt.Equal(added) {
		t.Errorf("expected browser timestamp kept, got %v", b.BrowserAddedAt)
	}
	if b.Tags == nil {
		t.Error("expected initialized tags slice")
	}
	if b.CreatedAt.IsZero() || b.UpdatedAt.IsZero() {
		t.Error("expected timestamps set")
	}
}

func TestNewRunID(t *testing.T) {
	a := model.NewRunID()
	b := model.NewRunID()

	if len(a) != 8 {
		t.Errorf("expected 8-char run ID, got %q", a)
	}
	if a == b {
		t.Errorf("expected distinct run IDs, both %q", a)
	}
}

func TestBrowserProfileLabel(t *testing.T) {
	tests := []struct {
		name    string
		profile model.BrowserProfile
		want    string
	}{
		{
			name:    "display name preferred",
			profile: model.BrowserProfile{ProfileDir: "Profile 1", DisplayName: stringPtr("alice@example.com")},
			want:    "alice@example.com",
		},
		{
			name:    "falls back to directory",
			profile: model.BrowserProfile{ProfileDir: "Default"},
			want:    "Default",
		},
		{
			name:    "empty display name ignored",
			profile: model.BrowserProfile{ProfileDir: "Default", DisplayName: stringPtr("")},
			want:    "Default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStore_GetFoldersInFolder(t *testing.T) {
	store := model.Store{
		Folders: []model.Folder{
			{ID: "f1", Name: "Development", ParentID: nil, Position: 1},
			{ID: "f2", Name: "React", ParentID: stringPtr("f1")},
			{ID: "f3", Name: "Design", ParentID: nil, Position: 0},
			{ID: "f4", Name: "Node", ParentID: stringPtr("f1")},
		},
	}

	rootFolders := store.GetFoldersInFolder(nil)
	if len(rootFolders) != 2 {
		t.Fatalf("expected 2 root folders, got %d", len(rootFolders))
	}
	if rootFolders[0].ID != "f3" || rootFolders[1].ID != "f1" {
		t.Errorf("expected position order f3, f1, got %s, %s", rootFolders[0].ID, rootFolders[1].ID)
	}

	f1ID := "f1"
	nested := store.GetFoldersInFolder(&f1ID)
	if len(nested) != 2 {
		t.Errorf("expected 2 nested folders in f1, got %d", len(nested))
	}
	// Same position, ordered by name.
	if nested[0].Name != "Node" {
		t.Errorf("expected Node first, got %s", nested[0].Name)
	}

	f3ID := "f3"
	if empty := store.GetFoldersInFolder(&f3ID); len(empty) != 0 {
		t.Errorf("expected 0 folders in f3, got %d", len(empty))
	}
}

func TestStore_GetBookmarksInFolder(t *testing.T) {
	f1ID := "f1"
	store := model.Store{
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Root Bookmark", URL: "https://example.com", Position: 1},
			{ID: "b2", Title: "Nested Bookmark", URL: "https://example.org", FolderID: &f1ID},
			{ID: "b3", Title: "Another Root", URL: "https://example.net", Position: 0},
		},
	}

	rootBookmarks := store.GetBookmarksInFolder(nil)
	if len(rootBookmarks) != 2 {
		t.Fatalf("expected 2 root bookmarks, got %d", len(rootBookmarks))
	}
	if rootBookmarks[0].ID != "b3" {
		t.Errorf("expected b3 first by position, got %s", rootBookmarks[0].ID)
	}

	nested := store.GetBookmarksInFolder(&f1ID)
	if len(nested) != 1 {
		t.Errorf("expected 1 nested bookmark, got %d", len(nested))
	}
}

func TestStore_GetFolderByID(t *testing.T) {
	store := model.Store{
		Folders: []model.Folder{
			{ID: "f1", Name: "Development"},
			{ID: "f2", Name: "React", ParentID: stringPtr("f1")},
		},
	}

	folder := store.GetFolderByID("f1")
	if folder == nil {
		t.Fatal("expected to find folder f1")
	}
	if folder.Name != "Development" {
		t.Errorf("expected name 'Development', got %q", folder.Name)
	}

	if notFound := store.GetFolderByID("nonexistent"); notFound != nil {
		t.Error("expected nil for nonexistent folder")
	}
}

func TestStore_FolderPath(t *testing.T) {
	store := model.Store{
		Folders: []model.Folder{
			{ID: "f1", Name: "Development"},
			{ID: "f2", Name: "React", ParentID: stringPtr("f1")},
			{ID: "f3", Name: "Hooks", ParentID: stringPtr("f2")},
		},
	}

	tests := []struct {
		id   string
		want string
	}{
		{"f1", "Development"},
		{"f2", "Development/React"},
		{"f3", "Development/React/Hooks"},
		{"nonexistent", ""},
	}

	for _, tt := range tests {
		if got := store.FolderPath(tt.id); got != tt.want {
			t.Errorf("FolderPath(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
