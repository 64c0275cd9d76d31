// Package snapshot parses Chromium-format Bookmarks files into flat,
// ordered folder and bookmark records.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"
)

// Folder is one folder node flattened out of the snapshot tree.
type Folder struct {
	BrowserID       string // the browser's opaque node ID
	Name            string
	ParentBrowserID *string // nil = directly under a root
	Path            string  // slash-joined, materialized on descent
	Position        int     // 0-based index among siblings
}

// Bookmark is one url node flattened out of the snapshot tree.
type Bookmark struct {
	BrowserID       string
	URL             string
	Title           string
	ParentBrowserID *string    // nil = directly under a root
	AddedAt         *time.Time // nil = missing or out of sane range
	Position        int
}

// Tree is the parsed snapshot: every folder and bookmark under every root,
// plus the document's own metadata fields when present.
type Tree struct {
	Folders   []Folder
	Bookmarks []Bookmark
	Checksum  string
	Version   int
}

// Seconds between the WebKit epoch (1601-01-01) and the Unix epoch.
const webkitEpochDelta = 11644473600

// node mirrors the Chromium bookmark node shape. IDs and timestamps may be
// encoded as JSON strings or numbers depending on what wrote the file.
type node struct {
	Type      string     `json:"type"`
	ID        flexString `json:"id"`
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	DateAdded flexString `json:"date_added"`
	Children  []node     `json:"children"`
}

type document struct {
	Checksum string          `json:"checksum"`
	Version  int             `json:"version"`
	Roots    map[string]node `json:"roots"`
}

// Parse reads a Chromium Bookmarks file. A missing file yields an empty
// Tree and no error; malformed JSON is a decode error.
func Parse(path string) (*Tree, error) {
	tree := &Tree{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tree, nil
		}
		return nil, fmt.Errorf("read bookmarks file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode bookmarks file: %w", err)
	}

	tree.Checksum = doc.Checksum
	tree.Version = doc.Version

	// Root folders themselves are not emitted; their children start at an
	// empty path with no parent browser ID. Roots are visited in sorted
	// key order so the flattened sequences are deterministic.
	rootNames := make([]string, 0, len(doc.Roots))
	for name := range doc.Roots {
		rootNames = append(rootNames, name)
	}
	sort.Strings(rootNames)

	for _, name := range rootNames {
		root := doc.Roots[name]
		if root.Type != "folder" {
			continue
		}
		for i, child := range root.Children {
			walk(child, nil, "", i, tree)
		}
	}

	return tree, nil
}

// walk flattens one node depth-first into the tree.
func walk(n node, parentBrowserID *string, parentPath string, position int, tree *Tree) {
	switch n.Type {
	case "folder":
		path := n.Name
		if parentPath != "" {
			path = parentPath + "/" + n.Name
		}

		tree.Folders = append(tree.Folders, Folder{
			BrowserID:       string(n.ID),
			Name:            n.Name,
			ParentBrowserID: parentBrowserID,
			Path:            path,
			Position:        position,
		})

		id := string(n.ID)
		for i, child := range n.Children {
			walk(child, &id, path, i, tree)
		}

	case "url":
		tree.Bookmarks = append(tree.Bookmarks, Bookmark{
			BrowserID:       string(n.ID),
			URL:             n.URL,
			Title:           n.Name,
			ParentBrowserID: parentBrowserID,
			AddedAt:         parseWebkitTimestamp(string(n.DateAdded)),
			Position:        position,
		})
	}
}

// parseWebkitTimestamp converts microseconds since 1601-01-01 to a local
// time. Results before 1970 or after 2100 are treated as unknown.
func parseWebkitTimestamp(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	micros, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}

	secs := micros/1e6 - webkitEpochDelta
	t := time.Unix(secs, (micros%1e6)*1000)

	if t.Year() < 1970 || t.Year() > 2100 {
		return nil
	}
	return &t
}

// CountBookmarks counts url nodes in a snapshot without building records.
// Missing or malformed files count as zero.
func CountBookmarks(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0
	}

	count := 0
	for _, root := range doc.Roots {
		count += countNode(root)
	}
	return count
}

func countNode(n node) int {
	switch n.Type {
	case "url":
		return 1
	case "folder":
		count := 0
		for _, child := range n.Children {
			count += countNode(child)
		}
		return count
	}
	return 0
}

// flexString decodes a JSON string or number as a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
