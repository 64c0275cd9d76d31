package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/nikbrunner/bmsweep/internal/model"
)

// FindFolderByBrowserID looks up an imported folder by its natural import
// key (profile, browser folder ID). Returns nil when no row exists.
func (s *Store) FindFolderByBrowserID(profileID, browserID string) (*model.Folder, error) {
	row := s.db.QueryRow(`
		SELECT id, name, parent_id, profile_id, browser_id, browser_path, position, created_at
		FROM folders
		WHERE profile_id = ? AND browser_id = ?
	`, profileID, browserID)

	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find folder by browser id: %w", err)
	}
	return f, nil
}

// InsertFolder stores a new folder row.
func (s *Store) InsertFolder(f model.Folder) error {
	_, err := s.db.Exec(`
		INSERT INTO folders (id, name, parent_id, profile_id, browser_id, browser_path, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Name, f.ParentID, f.ProfileID, f.BrowserID, f.BrowserPath,
		f.Position, f.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

// ListFolders returns all folders, optionally filtered to one profile.
func (s *Store) ListFolders(profileID *string) ([]model.Folder, error) {
	query := `
		SELECT id, name, parent_id, profile_id, browser_id, browser_path, position, created_at
		FROM folders
	`
	var args []any
	if profileID != nil {
		query += " WHERE profile_id = ?"
		args = append(args, *profileID)
	}
	query += " ORDER BY browser_path, position"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []model.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *f)
	}
	return folders, rows.Err()
}

// DeleteFolder removes a folder. Descendant folders cascade; bookmarks that
// pointed at any deleted folder are orphaned.
func (s *Store) DeleteFolder(id string) error {
	_, err := s.db.Exec("DELETE FROM folders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return nil
}

// CountFoldersByProfile counts one profile's imported folders.
func (s *Store) CountFoldersByProfile(profileID string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM folders WHERE profile_id = ?", profileID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}
	return n, nil
}

func scanFolder(r rowScanner) (*model.Folder, error) {
	var f model.Folder
	var parentID, profileID, browserID sql.NullString
	var createdAt string

	if err := r.Scan(&f.ID, &f.Name, &parentID, &profileID, &browserID,
		&f.BrowserPath, &f.Position, &createdAt); err != nil {
		return nil, err
	}

	f.ParentID = nullToPtr(parentID)
	f.ProfileID = nullToPtr(profileID)
	f.BrowserID = nullToPtr(browserID)
	f.CreatedAt = mustParseTime(createdAt)
	return &f, nil
}
