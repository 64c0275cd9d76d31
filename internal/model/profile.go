package model

import "time"

// BrowserProfile represents one browser profile directory observed on disk.
// Identity is the (Browser, ProfileDir) pair; a profile is created on first
// import and updated (never duplicated) on every import after that.
type BrowserProfile struct {
	ID           string     `json:"id"`
	Browser      string     `json:"browser"`
	ProfileDir   string     `json:"profileDir"`
	DisplayName  *string    `json:"displayName"` // nil = no non-generic name found
	Path         string     `json:"path"`
	Enabled      bool       `json:"enabled"`
	LastSyncedAt *time.Time `json:"lastSyncedAt"` // nil = never imported
	CreatedAt    time.Time  `json:"createdAt"`
}

// NewBrowserProfileParams holds parameters for creating a new BrowserProfile.
type NewBrowserProfileParams struct {
	Browser     string
	ProfileDir  string
	DisplayName *string
	Path        string
}

// NewBrowserProfile creates an enabled BrowserProfile with a generated UUID.
func NewBrowserProfile(params NewBrowserProfileParams) BrowserProfile {
	return BrowserProfile{
		ID:          GenerateUUID(),
		Browser:     params.Browser,
		ProfileDir:  params.ProfileDir,
		DisplayName: params.DisplayName,
		Path:        params.Path,
		Enabled:     true,
		CreatedAt:   time.Now(),
	}
}

// Label returns the preferred human-readable name for the profile:
// the display name when one was resolved, otherwise the directory name.
func (p BrowserProfile) Label() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	return p.ProfileDir
}
