package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/nikbrunner/bmsweep/internal/model"
)

// InsertSyncRun records one import of one profile.
func (s *Store) InsertSyncRun(run model.SyncRun) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_runs (id, profile_id, status, folders_added, folders_skipped,
		                       bookmarks_added, bookmarks_skipped, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.ProfileID, run.Status, run.FoldersAdded, run.FoldersSkipped,
		run.BookmarksAdded, run.BookmarksSkipped, run.ErrorMessage,
		run.StartedAt.Format(timeFormat), formatTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

// ListSyncRuns returns the most recent sync runs, newest first.
func (s *Store) ListSyncRuns(limit int) ([]model.SyncRun, error) {
	rows, err := s.db.Query(`
		SELECT id, profile_id, status, folders_added, folders_skipped,
		       bookmarks_added, bookmarks_skipped, error_message, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var run model.SyncRun
		var profileID, errMsg, finishedAt sql.NullString
		var startedAt string

		if err := rows.Scan(&run.ID, &profileID, &run.Status, &run.FoldersAdded,
			&run.FoldersSkipped, &run.BookmarksAdded, &run.BookmarksSkipped,
			&errMsg, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}

		run.ProfileID = nullToPtr(profileID)
		run.ErrorMessage = nullToPtr(errMsg)
		run.StartedAt = mustParseTime(startedAt)
		run.FinishedAt = parseTime(finishedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// InsertDeadLink appends one dead-link record. Runs are append-only; rows
// from earlier runs are never touched.
func (s *Store) InsertDeadLink(d model.DeadLink) error {
	_, err := s.db.Exec(`
		INSERT INTO dead_links (id, bookmark_id, run_id, status_code, error_message, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.BookmarkID, d.RunID, d.StatusCode, d.ErrorMessage,
		d.CheckedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert dead link: %w", err)
	}
	return nil
}

// LatestDeadLinkRunID returns the run ID of the most recent dead-link scan,
// or "" when none has run.
func (s *Store) LatestDeadLinkRunID() (string, error) {
	var runID string
	err := s.db.QueryRow(`
		SELECT run_id FROM dead_links
		ORDER BY checked_at DESC
		LIMIT 1
	`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest dead link run: %w", err)
	}
	return runID, nil
}

// DeadLinksForRun returns every dead-link record tagged with a run ID.
func (s *Store) DeadLinksForRun(runID string) ([]model.DeadLink, error) {
	rows, err := s.db.Query(`
		SELECT id, bookmark_id, run_id, status_code, error_message, checked_at
		FROM dead_links
		WHERE run_id = ?
		ORDER BY checked_at
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("dead links for run: %w", err)
	}
	defer rows.Close()

	var links []model.DeadLink
	for rows.Next() {
		var d model.DeadLink
		var statusCode sql.NullInt64
		var checkedAt string

		if err := rows.Scan(&d.ID, &d.BookmarkID, &d.RunID, &statusCode,
			&d.ErrorMessage, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan dead link: %w", err)
		}

		d.StatusCode = nullIntToPtr(statusCode)
		d.CheckedAt = mustParseTime(checkedAt)
		links = append(links, d)
	}
	return links, rows.Err()
}

// InsertDuplicateGroup stores a group and its memberships in one
// transaction so a partially written group never appears in reads.
func (s *Store) InsertDuplicateGroup(g model.DuplicateGroup) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO duplicate_groups (id, run_id, normalized_url, match_type, similarity, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, g.ID, g.RunID, g.NormalizedURL, string(g.MatchType), g.Similarity,
		g.CreatedAt.Format(timeFormat)); err != nil {
		return fmt.Errorf("insert duplicate group: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO duplicate_group_members (group_id, bookmark_id) VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare member insert: %w", err)
	}
	defer stmt.Close()

	for _, member := range g.Members {
		if _, err := stmt.Exec(g.ID, member.ID); err != nil {
			return fmt.Errorf("insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit duplicate group: %w", err)
	}
	return nil
}

// LatestDuplicateRunID returns the run ID of the most recent duplicate scan
// that produced groups of the given match type, or "" when none exists.
// Pass "" as matchType for the latest run of any type.
func (s *Store) LatestDuplicateRunID(matchType model.MatchType) (string, error) {
	query := `
		SELECT run_id FROM duplicate_groups
	`
	var args []any
	if matchType != "" {
		query += " WHERE match_type = ?"
		args = append(args, string(matchType))
	}
	query += " ORDER BY created_at DESC LIMIT 1"

	var runID string
	err := s.db.QueryRow(query, args...).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest duplicate run: %w", err)
	}
	return runID, nil
}

// DuplicateGroupsForRun returns every group tagged with a run ID, members
// populated.
func (s *Store) DuplicateGroupsForRun(runID string) ([]model.DuplicateGroup, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, normalized_url, match_type, similarity, created_at
		FROM duplicate_groups
		WHERE run_id = ?
		ORDER BY match_type, similarity DESC, created_at
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("duplicate groups for run: %w", err)
	}
	defer rows.Close()

	var groups []model.DuplicateGroup
	for rows.Next() {
		var g model.DuplicateGroup
		var matchType, createdAt string

		if err := rows.Scan(&g.ID, &g.RunID, &g.NormalizedURL, &matchType,
			&g.Similarity, &createdAt); err != nil {
			return nil, fmt.Errorf("scan duplicate group: %w", err)
		}

		g.MatchType = model.MatchType(matchType)
		g.CreatedAt = mustParseTime(createdAt)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		members, err := s.groupMembers(groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}
	return groups, nil
}

func (s *Store) groupMembers(groupID string) ([]model.Bookmark, error) {
	rows, err := s.db.Query(`
		SELECT b.id, b.url, b.title, b.description, b.notes, b.folder_id, b.profile_id,
		       b.browser_id, b.browser_added_at, b.position, b.created_at, b.updated_at
		FROM bookmarks b
		JOIN duplicate_group_members dgm ON dgm.bookmark_id = b.id
		WHERE dgm.group_id = ?
		ORDER BY b.created_at
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("group members: %w", err)
	}
	defer rows.Close()

	var members []model.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		members = append(members, *b)
	}
	return members, rows.Err()
}
