package browser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/bmsweep/internal/browser"
)

const minimalSnapshot = `{
  "roots": {
    "bookmark_bar": {
      "type": "folder", "id": "1", "name": "Bar",
      "children": [
        {"type": "url", "id": "2", "name": "a", "url": "https://a.example.com", "date_added": "13349678400000000"},
        {"type": "url", "id": "3", "name": "b", "url": "https://b.example.com", "date_added": "13349678400000000"}
      ]
    }
  }
}`

// makeProfile creates a fake profile directory under root with the given
// files (nil content = skip).
func makeProfile(t *testing.T, root, name, bookmarks, prefs string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create profile dir: %v", err)
	}
	if bookmarks != "" {
		if err := os.WriteFile(filepath.Join(dir, "Bookmarks"), []byte(bookmarks), 0644); err != nil {
			t.Fatalf("failed to write Bookmarks: %v", err)
		}
	}
	if prefs != "" {
		if err := os.WriteFile(filepath.Join(dir, "Preferences"), []byte(prefs), 0644); err != nil {
			t.Fatalf("failed to write Preferences: %v", err)
		}
	}
	return dir
}

func TestDetectBrowserProfiles(t *testing.T) {
	root := t.TempDir()
	makeProfile(t, root, "Default", minimalSnapshot, `{"profile": {"name": "Person 1"}}`)
	makeProfile(t, root, "Profile 1", minimalSnapshot, `{"account_info": [{"email": "dev@example.com"}]}`)
	makeProfile(t, root, "Profile 2", "", "") // no Bookmarks file, skipped
	makeProfile(t, root, "System Profile", minimalSnapshot, "")

	profiles := browser.DetectBrowserProfiles("Chrome", root)

	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}

	byDir := map[string]browser.Profile{}
	for _, p := range profiles {
		byDir[p.Dir] = p
	}

	def, ok := byDir["Default"]
	if !ok {
		t.Fatal("Default profile not detected")
	}
	if def.DisplayName != "" {
		t.Errorf("generic name should be rejected, got %q", def.DisplayName)
	}
	if def.BookmarkCount != 2 {
		t.Errorf("expected bookmark count 2, got %d", def.BookmarkCount)
	}
	if def.Browser != "Chrome" {
		t.Errorf("expected browser Chrome, got %q", def.Browser)
	}

	p1, ok := byDir["Profile 1"]
	if !ok {
		t.Fatal("Profile 1 not detected")
	}
	if p1.DisplayName != "dev@example.com" {
		t.Errorf("expected email display name, got %q", p1.DisplayName)
	}
}

func TestDetectBrowserProfiles_MissingRoot(t *testing.T) {
	if got := browser.DetectBrowserProfiles("Chrome", filepath.Join(t.TempDir(), "nope")); got != nil {
		t.Errorf("expected nil for missing root, got %v", got)
	}
	if got := browser.DetectBrowserProfiles("Chrome", ""); got != nil {
		t.Errorf("expected nil for empty root, got %v", got)
	}
}

func TestDetectBrowserProfiles_OperaLayout(t *testing.T) {
	// Opera keeps Bookmarks directly under its root.
	root := filepath.Join(t.TempDir(), "Opera Stable")
	makeProfile(t, filepath.Dir(root), "Opera Stable", minimalSnapshot, "")

	profiles := browser.DetectBrowserProfiles("Opera", root)
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	if profiles[0].Dir != "Opera Stable" {
		t.Errorf("expected dir name 'Opera Stable', got %q", profiles[0].Dir)
	}
	if profiles[0].BookmarkCount != 2 {
		t.Errorf("expected count 2, got %d", profiles[0].BookmarkCount)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		prefs string
		want  string
	}{
		{
			name:  "email wins",
			prefs: `{"account_info": [{"email": "a@b.com", "full_name": "Ada"}], "profile": {"name": "Work"}}`,
			want:  "a@b.com",
		},
		{
			name:  "full name when no email",
			prefs: `{"account_info": [{"full_name": "Ada Lovelace"}]}`,
			want:  "Ada Lovelace",
		},
		{
			name:  "profile name fallback",
			prefs: `{"profile": {"name": "Work"}}`,
			want:  "Work",
		},
		{
			name:  "generic Person name rejected",
			prefs: `{"profile": {"name": "Person 1"}}`,
			want:  "",
		},
		{
			name:  "generic Profile name rejected",
			prefs: `{"profile": {"name": "Profile 3"}}`,
			want:  "",
		},
		{
			name:  "generic User name rejected",
			prefs: `{"profile": {"name": "User 2"}}`,
			want:  "",
		},
		{
			name:  "malformed preferences",
			prefs: "{broken",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "Preferences"), []byte(tt.prefs), 0644); err != nil {
				t.Fatalf("failed to write Preferences: %v", err)
			}
			if got := browser.DisplayName(dir); got != tt.want {
				t.Errorf("DisplayName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayName_MissingPreferences(t *testing.T) {
	if got := browser.DisplayName(t.TempDir()); got != "" {
		t.Errorf("expected empty name, got %q", got)
	}
}
