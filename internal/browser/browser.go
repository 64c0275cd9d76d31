// Package browser discovers Chromium-based browser profiles on disk.
package browser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nikbrunner/bmsweep/internal/snapshot"
)

// Profile is a lightweight descriptor for one discovered browser profile.
type Profile struct {
	Browser       string // "Chrome", "Edge", ...
	Dir           string // profile directory name: "Default", "Profile 1", ...
	DisplayName   string // best-effort, empty when only a generic name exists
	Path          string // absolute path to the profile directory
	BookmarksPath string // absolute path to the Bookmarks file
	BookmarkCount int    // fast recursive count, 0 on any read failure
}

// userDataPaths maps browser names to their user-data directory relative to
// the per-OS base. Opera keeps its data under the roaming dir on Windows.
var userDataPaths = map[string]map[string]string{
	"Chrome": {
		"linux":   "google-chrome",
		"darwin":  "Google/Chrome",
		"windows": "Google/Chrome/User Data",
	},
	"Edge": {
		"linux":   "microsoft-edge",
		"darwin":  "Microsoft Edge",
		"windows": "Microsoft/Edge/User Data",
	},
	"Brave": {
		"linux":   "BraveSoftware/Brave-Browser",
		"darwin":  "BraveSoftware/Brave-Browser",
		"windows": "BraveSoftware/Brave-Browser/User Data",
	},
	"Vivaldi": {
		"linux":   "vivaldi",
		"darwin":  "Vivaldi",
		"windows": "Vivaldi/User Data",
	},
	"Opera": {
		"linux":   "opera",
		"darwin":  "com.operasoftware.Opera",
		"windows": "Opera Software/Opera Stable",
	},
	"Chromium": {
		"linux":   "chromium",
		"darwin":  "Chromium",
		"windows": "Chromium/User Data",
	},
}

// genericNamePrefixes mark profile names that carry no information; such
// names are rejected in favor of no display name at all.
var genericNamePrefixes = []string{"Person ", "Profile ", "User "}

// UserDataRoot returns the user-data directory for a browser on the current
// OS, or "" when unknown.
func UserDataRoot(browser string) string {
	paths, ok := userDataPaths[browser]
	if !ok {
		return ""
	}
	rel, ok := paths[runtime.GOOS]
	if !ok {
		return ""
	}

	var base string
	switch runtime.GOOS {
	case "windows":
		if browser == "Opera" {
			base = os.Getenv("APPDATA")
		} else {
			base = os.Getenv("LOCALAPPDATA")
		}
	case "darwin":
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, "Library", "Application Support")
	default:
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}

	if base == "" {
		return ""
	}
	return filepath.Join(base, filepath.FromSlash(rel))
}

// DetectProfiles scans every supported browser for profile directories that
// contain a Bookmarks file.
func DetectProfiles() []Profile {
	var profiles []Profile
	for _, browser := range []string{"Chrome", "Edge", "Brave", "Vivaldi", "Opera", "Chromium"} {
		profiles = append(profiles, DetectBrowserProfiles(browser, UserDataRoot(browser))...)
	}
	return profiles
}

// DetectBrowserProfiles enumerates the Default profile plus any "Profile N"
// siblings under one browser's user-data root. Opera has no profile
// subdirectories; its root is the profile.
func DetectBrowserProfiles(browser, root string) []Profile {
	if root == "" {
		return nil
	}

	var profiles []Profile

	// Opera-style layout: Bookmarks directly under the root.
	if _, err := os.Stat(filepath.Join(root, "Bookmarks")); err == nil {
		if p := inspectProfileDir(browser, root, filepath.Base(root)); p != nil {
			return []Profile{*p}
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name != "Default" && !strings.HasPrefix(name, "Profile ") {
			continue
		}
		if p := inspectProfileDir(browser, filepath.Join(root, name), name); p != nil {
			profiles = append(profiles, *p)
		}
	}

	return profiles
}

// inspectProfileDir builds a descriptor for one candidate profile directory,
// or nil when it holds no Bookmarks file.
func inspectProfileDir(browser, dir, name string) *Profile {
	bookmarksPath := filepath.Join(dir, "Bookmarks")
	if _, err := os.Stat(bookmarksPath); err != nil {
		return nil
	}

	return &Profile{
		Browser:       browser,
		Dir:           name,
		DisplayName:   DisplayName(dir),
		Path:          dir,
		BookmarksPath: bookmarksPath,
		BookmarkCount: snapshot.CountBookmarks(bookmarksPath),
	}
}

// preferences covers the slice of the Preferences file used for display-name
// resolution.
type preferences struct {
	AccountInfo []struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	} `json:"account_info"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// DisplayName resolves a human-friendly name for a profile directory from
// its Preferences file: account email, then account full name, then the
// profile name unless it is generic. Missing or malformed preferences yield
// an empty name.
func DisplayName(profileDir string) string {
	data, err := os.ReadFile(filepath.Join(profileDir, "Preferences"))
	if err != nil {
		return ""
	}

	var prefs preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return ""
	}

	if len(prefs.AccountInfo) > 0 {
		if email := prefs.AccountInfo[0].Email; email != "" {
			return email
		}
		if full := prefs.AccountInfo[0].FullName; full != "" {
			return full
		}
	}

	name := prefs.Profile.Name
	for _, prefix := range genericNamePrefixes {
		if strings.HasPrefix(name, prefix) {
			return ""
		}
	}
	return name
}
