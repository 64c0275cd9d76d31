package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikbrunner/bmsweep/internal/model"
)

// ErrMissingURL is returned when a bookmark is saved without a URL. This is
// a contract error and propagates immediately instead of being absorbed
// into a result.
var ErrMissingURL = errors.New("bookmark has no URL")

// FindBookmarkByBrowserID looks up an imported bookmark by its natural
// import key (profile, browser bookmark ID). Returns nil when no row exists.
func (s *Store) FindBookmarkByBrowserID(profileID, browserID string) (*model.Bookmark, error) {
	row := s.db.QueryRow(`
		SELECT id, url, title, description, notes, folder_id, profile_id, browser_id,
		       browser_added_at, position, created_at, updated_at
		FROM bookmarks
		WHERE profile_id = ? AND browser_id = ?
	`, profileID, browserID)

	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bookmark by browser id: %w", err)
	}
	return b, nil
}

// GetBookmark looks up a bookmark by ID. Returns nil when no row exists.
func (s *Store) GetBookmark(id string) (*model.Bookmark, error) {
	row := s.db.QueryRow(`
		SELECT id, url, title, description, notes, folder_id, profile_id, browser_id,
		       browser_added_at, position, created_at, updated_at
		FROM bookmarks
		WHERE id = ?
	`, id)

	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return b, nil
}

// InsertBookmark stores a new bookmark row.
func (s *Store) InsertBookmark(b model.Bookmark) error {
	if b.URL == "" {
		return ErrMissingURL
	}

	_, err := s.db.Exec(`
		INSERT INTO bookmarks (id, url, title, description, notes, folder_id, profile_id,
		                       browser_id, browser_added_at, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.URL, b.Title, b.Description, b.Notes, b.FolderID, b.ProfileID,
		b.BrowserID, formatTime(b.BrowserAddedAt), b.Position,
		b.CreatedAt.Format(timeFormat), b.UpdatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// UpdateBookmarkNotes sets the local notes on a bookmark.
func (s *Store) UpdateBookmarkNotes(id string, notes *string) error {
	_, err := s.db.Exec(`
		UPDATE bookmarks SET notes = ?, updated_at = ? WHERE id = ?
	`, notes, time.Now().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("update bookmark notes: %w", err)
	}
	return nil
}

// ListBookmarks returns all bookmarks, optionally filtered to one profile.
// Tags are not populated; use TagsForBookmark.
func (s *Store) ListBookmarks(profileID *string) ([]model.Bookmark, error) {
	query := `
		SELECT id, url, title, description, notes, folder_id, profile_id, browser_id,
		       browser_added_at, position, created_at, updated_at
		FROM bookmarks
	`
	var args []any
	if profileID != nil {
		query += " WHERE profile_id = ?"
		args = append(args, *profileID)
	}
	query += " ORDER BY created_at, position"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []model.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, *b)
	}
	return bookmarks, rows.Err()
}

// DeleteBookmarks removes bookmark rows by local ID.
func (s *Store) DeleteBookmarks(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := s.db.Exec("DELETE FROM bookmarks WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("delete bookmarks: %w", err)
	}
	return nil
}

// CountBookmarksByProfile counts one profile's imported bookmarks.
func (s *Store) CountBookmarksByProfile(profileID string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM bookmarks WHERE profile_id = ?", profileID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bookmarks: %w", err)
	}
	return n, nil
}

// EnsureTag returns the tag with the given name, creating it if needed.
// Names are trimmed and lowercased.
func (s *Store) EnsureTag(name string) (*model.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, errors.New("empty tag name")
	}

	row := s.db.QueryRow("SELECT id, name, created_at FROM tags WHERE name = ?", name)
	var t model.Tag
	var createdAt string
	err := row.Scan(&t.ID, &t.Name, &createdAt)
	if err == nil {
		t.CreatedAt = mustParseTime(createdAt)
		return &t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find tag: %w", err)
	}

	t = model.Tag{ID: model.GenerateUUID(), Name: name, CreatedAt: time.Now()}
	if _, err := s.db.Exec(`
		INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)
	`, t.ID, t.Name, t.CreatedAt.Format(timeFormat)); err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	return &t, nil
}

// TagBookmark attaches a tag to a bookmark. Re-attaching is a no-op.
func (s *Store) TagBookmark(bookmarkID, tagID string) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO bookmark_tags (bookmark_id, tag_id) VALUES (?, ?)
	`, bookmarkID, tagID)
	if err != nil {
		return fmt.Errorf("tag bookmark: %w", err)
	}
	return nil
}

// TagsForBookmark returns the tag names attached to a bookmark.
func (s *Store) TagsForBookmark(bookmarkID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT t.name FROM tags t
		JOIN bookmark_tags bt ON bt.tag_id = t.id
		WHERE bt.bookmark_id = ?
		ORDER BY t.name
	`, bookmarkID)
	if err != nil {
		return nil, fmt.Errorf("tags for bookmark: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanBookmark(r rowScanner) (*model.Bookmark, error) {
	var b model.Bookmark
	var description, notes, folderID, profileID, browserID, browserAddedAt sql.NullString
	var createdAt, updatedAt string

	if err := r.Scan(&b.ID, &b.URL, &b.Title, &description, &notes, &folderID,
		&profileID, &browserID, &browserAddedAt, &b.Position, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	b.Description = nullToPtr(description)
	b.Notes = nullToPtr(notes)
	b.FolderID = nullToPtr(folderID)
	b.ProfileID = nullToPtr(profileID)
	b.BrowserID = nullToPtr(browserID)
	b.BrowserAddedAt = parseTime(browserAddedAt)
	b.Tags = []string{}
	b.CreatedAt = mustParseTime(createdAt)
	b.UpdatedAt = mustParseTime(updatedAt)
	return &b, nil
}
