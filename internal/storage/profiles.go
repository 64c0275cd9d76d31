package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nikbrunner/bmsweep/internal/model"
)

// FindProfile looks up a profile by its (browser, profile dir) identity.
// Returns nil when no row exists.
func (s *Store) FindProfile(browser, profileDir string) (*model.BrowserProfile, error) {
	row := s.db.QueryRow(`
		SELECT id, browser, profile_dir, display_name, path, enabled, last_synced_at, created_at
		FROM browser_profiles
		WHERE browser = ? AND profile_dir = ?
	`, browser, profileDir)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

// GetProfile looks up a profile by ID. Returns nil when no row exists.
func (s *Store) GetProfile(id string) (*model.BrowserProfile, error) {
	row := s.db.QueryRow(`
		SELECT id, browser, profile_dir, display_name, path, enabled, last_synced_at, created_at
		FROM browser_profiles
		WHERE id = ?
	`, id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// InsertProfile stores a new profile row.
func (s *Store) InsertProfile(p model.BrowserProfile) error {
	enabled := 0
	if p.Enabled {
		enabled = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO browser_profiles (id, browser, profile_dir, display_name, path, enabled, last_synced_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Browser, p.ProfileDir, p.DisplayName, p.Path, enabled,
		formatTime(p.LastSyncedAt), p.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// UpdateProfileMeta refreshes the mutable descriptor fields (display name,
// path) observed on a re-import.
func (s *Store) UpdateProfileMeta(id string, displayName *string, path string) error {
	_, err := s.db.Exec(`
		UPDATE browser_profiles SET display_name = ?, path = ? WHERE id = ?
	`, displayName, path, id)
	if err != nil {
		return fmt.Errorf("update profile meta: %w", err)
	}
	return nil
}

// TouchProfileSynced sets the last-synced timestamp.
func (s *Store) TouchProfileSynced(id string, t time.Time) error {
	_, err := s.db.Exec(`
		UPDATE browser_profiles SET last_synced_at = ? WHERE id = ?
	`, t.Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("touch profile synced: %w", err)
	}
	return nil
}

// ListProfiles returns every stored profile.
func (s *Store) ListProfiles() ([]model.BrowserProfile, error) {
	rows, err := s.db.Query(`
		SELECT id, browser, profile_dir, display_name, path, enabled, last_synced_at, created_at
		FROM browser_profiles
		ORDER BY browser, profile_dir
	`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.BrowserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// DeleteProfile removes a profile. Foreign keys cascade its folders and
// nullify its bookmarks' profile references.
func (s *Store) DeleteProfile(id string) error {
	_, err := s.db.Exec("DELETE FROM browser_profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(r rowScanner) (*model.BrowserProfile, error) {
	var p model.BrowserProfile
	var displayName, lastSynced sql.NullString
	var enabled int
	var createdAt string

	if err := r.Scan(&p.ID, &p.Browser, &p.ProfileDir, &displayName, &p.Path,
		&enabled, &lastSynced, &createdAt); err != nil {
		return nil, err
	}

	p.DisplayName = nullToPtr(displayName)
	p.Enabled = enabled == 1
	p.LastSyncedAt = parseTime(lastSynced)
	p.CreatedAt = mustParseTime(createdAt)
	return &p, nil
}
