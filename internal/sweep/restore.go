package sweep

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const backupTimeLayout = "20060102_150405"

// Backup is one timestamped snapshot copy found in the backup dir,
// identified entirely by its filename.
type Backup struct {
	Path       string
	Browser    string
	ProfileDir string // sanitized form: spaces and slashes became underscores
	Timestamp  time.Time
}

// Matches reports whether the backup belongs to the given browser and
// profile directory, comparing through the same sanitizing the backup
// writer applies.
func (b Backup) Matches(browser, profileDir string) bool {
	return b.Browser == safeName(browser) && b.ProfileDir == safeName(profileDir)
}

// ParseBackup resolves a backup file's browser, profile, and timestamp
// from its {browser}_{profile}_Bookmarks_{timestamp}.json name.
func ParseBackup(path string) (Backup, error) {
	name := filepath.Base(path)
	stem, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return Backup{}, fmt.Errorf("not a backup file: %s", name)
	}

	identity, stamp, ok := strings.Cut(stem, "_Bookmarks_")
	if !ok {
		return Backup{}, fmt.Errorf("not a backup file: %s", name)
	}

	browser, profile, ok := strings.Cut(identity, "_")
	if !ok || browser == "" || profile == "" {
		return Backup{}, fmt.Errorf("cannot determine browser and profile from backup name: %s", name)
	}

	ts, err := time.ParseInLocation(backupTimeLayout, stamp, time.Local)
	if err != nil {
		return Backup{}, fmt.Errorf("cannot parse backup timestamp from name: %s", name)
	}

	return Backup{
		Path:       path,
		Browser:    browser,
		ProfileDir: profile,
		Timestamp:  ts,
	}, nil
}

// ListBackups returns every recognizable backup in dir, newest first.
// A missing dir means no backups; files that do not match the naming
// scheme are skipped.
func ListBackups(dir string) ([]Backup, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup dir: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		b, err := ParseBackup(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Path < backups[j].Path
	})
	return backups, nil
}

// RestoreResult reports one restored profile.
type RestoreResult struct {
	RestoredTo string
	// PreRestorePath is the copy made of the replaced file, so the
	// restore itself can be undone. Empty when backups are disabled or
	// there was nothing to replace.
	PreRestorePath string
}

// Restore copies a backup over a profile's Bookmarks file, replacing the
// browser's current bookmarks. When the file exists and backups are
// enabled, it is first copied aside as
// {browser}_{profile}_BeforeRestore_{timestamp}.json in the backup dir.
// The browser must be closed; it rewrites the file on exit.
func Restore(b Backup, bookmarksPath string, opts Options) (*RestoreResult, error) {
	if _, err := os.Stat(b.Path); err != nil {
		return nil, fmt.Errorf("backup not found: %s", b.Path)
	}

	result := &RestoreResult{RestoredTo: bookmarksPath}

	if _, err := os.Stat(bookmarksPath); err == nil && opts.CreateBackup {
		if err := os.MkdirAll(opts.BackupDir, 0755); err != nil {
			return nil, fmt.Errorf("creating pre-restore backup: %w", err)
		}
		name := fmt.Sprintf("%s_%s_BeforeRestore_%s.json",
			b.Browser, b.ProfileDir, time.Now().Format(backupTimeLayout))
		pre := filepath.Join(opts.BackupDir, name)
		if err := copyFile(bookmarksPath, pre); err != nil {
			return nil, fmt.Errorf("creating pre-restore backup: %w", err)
		}
		result.PreRestorePath = pre
	}

	if err := copyFile(b.Path, bookmarksPath); err != nil {
		return nil, fmt.Errorf("restoring backup: %w", err)
	}
	return result, nil
}
