// Package sweep removes targeted bookmarks from browser snapshot files,
// backing each file up first.
package sweep

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Deletion reasons recorded on targets.
const (
	ReasonDeadLink         = "dead_link"
	ReasonExactDuplicate   = "exact_duplicate"
	ReasonSimilarDuplicate = "similar_duplicate"
)

// Target identifies one bookmark to remove from a snapshot by the
// browser's own node ID. LocalID ties the target back to the store row
// so callers can prune only what was actually swept.
type Target struct {
	BrowserID string
	LocalID   string
	URL       string
	Title     string
	Reason    string
}

// Request is the unit of work: one profile's snapshot file and the
// targets to remove from it.
type Request struct {
	Browser       string
	ProfileDir    string
	BookmarksPath string
	Targets       []Target
}

// Options configures how snapshots are modified.
type Options struct {
	BackupDir    string
	CreateBackup bool
}

// Result reports one modified profile.
type Result struct {
	Browser    string
	ProfileDir string
	Deleted    int
	BackupPath string
	// Warning is set when the requested and removed counts differ; the
	// file's IDs may have changed since the last import.
	Warning string
}

// Apply backs up and rewrites one profile's snapshot. A missing snapshot
// or a failed backup aborts before anything is modified. The file is only
// rewritten when at least one node was removed.
func Apply(req Request, opts Options) (*Result, error) {
	result := &Result{Browser: req.Browser, ProfileDir: req.ProfileDir}

	if _, err := os.Stat(req.BookmarksPath); err != nil {
		return nil, fmt.Errorf("bookmarks file not found: %s", req.BookmarksPath)
	}

	if opts.CreateBackup {
		backupPath, err := backup(req, opts.BackupDir)
		if err != nil {
			return nil, fmt.Errorf("creating backup: %w", err)
		}
		result.BackupPath = backupPath
	}

	ids := make(map[string]bool, len(req.Targets))
	for _, t := range req.Targets {
		ids[t.BrowserID] = true
	}

	deleted, err := modifySnapshot(req.BookmarksPath, ids)
	if err != nil {
		return nil, err
	}
	result.Deleted = deleted

	if deleted == 0 && len(ids) > 0 {
		result.Warning = fmt.Sprintf("requested %d deletions but none were found in file; IDs may have changed", len(ids))
	} else if deleted != len(ids) {
		result.Warning = fmt.Sprintf("requested %d deletions but removed %d", len(ids), deleted)
	}
	return result, nil
}

// backup copies the snapshot to
// {browser}_{profile}_Bookmarks_{timestamp}.json in the backup dir.
func backup(req Request, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	timestamp := time.Now().Format(backupTimeLayout)
	name := fmt.Sprintf("%s_%s_Bookmarks_%s.json", safeName(req.Browser), safeName(req.ProfileDir), timestamp)
	dst := filepath.Join(dir, name)

	if err := copyFile(req.BookmarksPath, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// safeName makes a browser or profile name safe for backup filenames.
// Restore parsing depends on the same mapping.
func safeName(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "/", "_")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// modifySnapshot removes targeted url nodes from every root and rewrites
// the file when anything was removed. Decoding goes through
// json.UseNumber so 16-digit WebKit timestamps survive the round trip;
// all untouched keys are preserved.
func modifySnapshot(path string, ids map[string]bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading bookmarks file: %w", err)
	}

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		f.Close()
		return 0, fmt.Errorf("parsing bookmarks file: %w", err)
	}
	f.Close()

	deleted := 0
	if roots, ok := data["roots"].(map[string]any); ok {
		for _, root := range roots {
			folder, ok := root.(map[string]any)
			if !ok {
				continue
			}
			deleted += deleteFromFolder(folder, ids)
		}
	}

	if deleted == 0 {
		return 0, nil
	}

	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("writing bookmarks file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "   ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return 0, fmt.Errorf("writing bookmarks file: %w", err)
	}
	return deleted, nil
}

// deleteFromFolder rebuilds a folder's children without targeted url
// nodes. Folders are recursed into but never removed themselves. Node IDs
// are compared as strings since the file may hold numbers or strings.
func deleteFromFolder(folder map[string]any, ids map[string]bool) int {
	children, ok := folder["children"].([]any)
	if !ok {
		return 0
	}

	deleted := 0
	kept := make([]any, 0, len(children))
	for _, raw := range children {
		child, ok := raw.(map[string]any)
		if !ok {
			kept = append(kept, raw)
			continue
		}

		nodeType, _ := child["type"].(string)
		switch {
		case nodeType == "url" && ids[nodeID(child)]:
			deleted++
		case nodeType == "folder":
			deleted += deleteFromFolder(child, ids)
			kept = append(kept, child)
		default:
			kept = append(kept, child)
		}
	}

	folder["children"] = kept
	return deleted
}

func nodeID(node map[string]any) string {
	switch id := node["id"].(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return ""
	}
}
