package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/nikbrunner/bmsweep/internal/model"
)

// SearchBookmarks runs a full-text search over title/URL/description/notes,
// ranked by bm25. When the FTS query matches nothing (or the input contains
// no indexable tokens), a LIKE substring scan is used as a fallback so raw
// fragments like "example.com/x" still find rows.
func (s *Store) SearchBookmarks(query string) ([]model.Bookmark, error) {
	match := ftsQuery(query)
	if match != "" {
		results, err := s.searchFTS(match)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			return results, nil
		}
	}
	return s.searchLike(query)
}

func (s *Store) searchFTS(match string) ([]model.Bookmark, error) {
	rows, err := s.db.Query(`
		SELECT b.id, b.url, b.title, b.description, b.notes, b.folder_id, b.profile_id,
		       b.browser_id, b.browser_added_at, b.position, b.created_at, b.updated_at
		FROM bookmarks b
		JOIN bookmarks_fts ON bookmarks_fts.rowid = b.rowid
		WHERE bookmarks_fts MATCH ?
		ORDER BY bm25(bookmarks_fts)
	`, match)
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}
	defer rows.Close()

	return collectBookmarks(rows)
}

func (s *Store) searchLike(query string) ([]model.Bookmark, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	rows, err := s.db.Query(`
		SELECT id, url, title, description, notes, folder_id, profile_id,
		       browser_id, browser_added_at, position, created_at, updated_at
		FROM bookmarks
		WHERE title LIKE ? OR url LIKE ? OR description LIKE ? OR notes LIKE ?
		ORDER BY title
	`, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("like search: %w", err)
	}
	defer rows.Close()

	return collectBookmarks(rows)
}

func collectBookmarks(rows *sql.Rows) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		bookmarks = append(bookmarks, *b)
	}
	return bookmarks, rows.Err()
}

// ftsQuery turns free text into an FTS5 MATCH expression: bare quoted
// tokens, the last one as a prefix. Returns "" when nothing survives.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	var tokens []string
	for _, f := range fields {
		// Strip characters FTS5 treats as syntax.
		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case '"', '\'', '*', '(', ')', ':', '^', '-':
				return -1
			}
			return r
		}, f)
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	if len(tokens) == 0 {
		return ""
	}

	for i, tok := range tokens {
		quoted := `"` + tok + `"`
		if i == len(tokens)-1 {
			quoted += "*"
		}
		tokens[i] = quoted
	}
	return strings.Join(tokens, " ")
}

// BookmarkLocation is a display row joining a bookmark to its folder path
// and owning profile, backed by vw_bookmark_locations.
type BookmarkLocation struct {
	BookmarkID  string
	Title       string
	URL         string
	BrowserID   *string
	FolderName  *string
	FolderPath  *string
	ProfileID   *string
	Browser     *string
	ProfileDir  *string
	DisplayName *string
	ProfilePath *string
}

// BookmarkLocations returns the display rows for every bookmark.
func (s *Store) BookmarkLocations() ([]BookmarkLocation, error) {
	rows, err := s.db.Query(`
		SELECT bookmark_id, title, url, browser_id, folder_name, folder_path,
		       profile_id, browser, profile_dir, display_name, profile_path
		FROM vw_bookmark_locations
		ORDER BY browser, profile_dir, folder_path, title
	`)
	if err != nil {
		return nil, fmt.Errorf("bookmark locations: %w", err)
	}
	defer rows.Close()

	var locations []BookmarkLocation
	for rows.Next() {
		var loc BookmarkLocation
		var browserID, folderName, folderPath, profileID, browser, profileDir, displayName, profilePath sql.NullString

		if err := rows.Scan(&loc.BookmarkID, &loc.Title, &loc.URL, &browserID,
			&folderName, &folderPath, &profileID, &browser, &profileDir,
			&displayName, &profilePath); err != nil {
			return nil, fmt.Errorf("scan bookmark location: %w", err)
		}

		loc.BrowserID = nullToPtr(browserID)
		loc.FolderName = nullToPtr(folderName)
		loc.FolderPath = nullToPtr(folderPath)
		loc.ProfileID = nullToPtr(profileID)
		loc.Browser = nullToPtr(browser)
		loc.ProfileDir = nullToPtr(profileDir)
		loc.DisplayName = nullToPtr(displayName)
		loc.ProfilePath = nullToPtr(profilePath)
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}
