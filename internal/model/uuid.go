package model

import "github.com/google/uuid"

// GenerateUUID creates a new UUID string.
func GenerateUUID() string {
	return uuid.New().String()
}

// NewRunID creates a short opaque token tagging all rows produced by one
// duplicate or dead-link scan (the first 8 hex characters of a UUID).
func NewRunID() string {
	return uuid.New().String()[:8]
}
