package model

import "time"

// Folder represents a container for bookmarks and other folders.
// Imported folders carry the browser's original node ID and the
// slash-joined path materialized at import time; manually created
// folders have neither.
type Folder struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ParentID    *string   `json:"parentId"`  // nil = root level
	ProfileID   *string   `json:"profileId"` // nil = manual folder
	BrowserID   *string   `json:"browserId"` // nil = manual folder
	BrowserPath string    `json:"browserPath"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name        string
	ParentID    *string
	ProfileID   *string
	BrowserID   *string
	BrowserPath string
	Position    int
}

// NewFolder creates a Folder with a generated UUID.
func NewFolder(params NewFolderParams) Folder {
	return Folder{
		ID:          GenerateUUID(),
		Name:        params.Name,
		ParentID:    params.ParentID,
		ProfileID:   params.ProfileID,
		BrowserID:   params.BrowserID,
		BrowserPath: params.BrowserPath,
		Position:    params.Position,
		CreatedAt:   time.Now(),
	}
}
