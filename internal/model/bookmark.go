package model

import "time"

// Bookmark represents a saved URL with metadata.
// The (ProfileID, BrowserID) pair is the natural de-duplication key for
// imports: when both are set and match an existing row, that row is reused.
type Bookmark struct {
	ID             string     `json:"id"`
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Notes          *string    `json:"notes"`
	FolderID       *string    `json:"folderId"`  // nil = root level
	ProfileID      *string    `json:"profileId"` // nil = manual entry
	BrowserID      *string    `json:"browserId"` // browser's opaque node ID, nil = manual entry
	BrowserAddedAt *time.Time `json:"browserAddedAt"` // nil = unknown or out of sane range
	Position       int        `json:"position"`
	Tags           []string   `json:"tags"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	URL            string
	Title          string
	Description    *string
	Notes          *string
	FolderID       *string
	ProfileID      *string
	BrowserID      *string
	BrowserAddedAt *time.Time
	Position       int
	Tags           []string
}

// NewBookmark creates a Bookmark with generated UUID and timestamps.
func NewBookmark(params NewBookmarkParams) Bookmark {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now()
	return Bookmark{
		ID:             GenerateUUID(),
		URL:            params.URL,
		Title:          params.Title,
		Description:    params.Description,
		Notes:          params.Notes,
		FolderID:       params.FolderID,
		ProfileID:      params.ProfileID,
		BrowserID:      params.BrowserID,
		BrowserAddedAt: params.BrowserAddedAt,
		Position:       params.Position,
		Tags:           tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
