package model

import "time"

// MatchType classifies how a duplicate group was detected.
type MatchType string

const (
	MatchExact   MatchType = "exact"   // identical normalized URLs
	MatchSimilar MatchType = "similar" // signature similarity above threshold, below 1.0
)

// DuplicateGroup represents one detected cluster of same-or-similar URLs.
// Groups are write-once per scan run; old runs are retained so history
// stays inspectable, and readers ask for the most recent run explicitly.
type DuplicateGroup struct {
	ID            string     `json:"id"`
	RunID         string     `json:"runId"`
	NormalizedURL string     `json:"normalizedUrl"` // "a <-> b" for similar groups
	MatchType     MatchType  `json:"matchType"`
	Similarity    float64    `json:"similarity"` // 1.0 for exact groups
	CreatedAt     time.Time  `json:"createdAt"`
	Members       []Bookmark `json:"members"`
}

// DeadLink represents one failed reachability check for one bookmark
// within one scan run. Append-only per run, same retention policy as
// duplicate groups.
type DeadLink struct {
	ID           string    `json:"id"`
	BookmarkID   string    `json:"bookmarkId"`
	RunID        string    `json:"runId"`
	StatusCode   *int      `json:"statusCode"` // nil = transport-level failure
	ErrorMessage string    `json:"errorMessage"`
	CheckedAt    time.Time `json:"checkedAt"`
}

// Sync run statuses.
const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial" // finished with absorbed per-item errors
	SyncStatusFailed  = "failed"
)

// SyncRun records one import of one profile: what was added, what was
// skipped, and any absorbed error.
type SyncRun struct {
	ID               string     `json:"id"`
	ProfileID        *string    `json:"profileId"`
	Status           string     `json:"status"`
	FoldersAdded     int        `json:"foldersAdded"`
	FoldersSkipped   int        `json:"foldersSkipped"`
	BookmarksAdded   int        `json:"bookmarksAdded"`
	BookmarksSkipped int        `json:"bookmarksSkipped"`
	ErrorMessage     *string    `json:"errorMessage"`
	StartedAt        time.Time  `json:"startedAt"`
	FinishedAt       *time.Time `json:"finishedAt"`
}

// Tag is a user-assigned label attachable to any number of bookmarks.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
