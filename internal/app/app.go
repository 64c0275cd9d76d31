// Package app orchestrates the maintenance pipeline: import, duplicate
// scan, dead-link scan, and sweep-plan assembly from persisted scans.
package app

import (
	"fmt"
	"os"

	"github.com/nikbrunner/bmsweep/internal/browser"
	"github.com/nikbrunner/bmsweep/internal/config"
	"github.com/nikbrunner/bmsweep/internal/logger"
	"github.com/nikbrunner/bmsweep/internal/storage"
)

// App bundles configuration and logging for the command layer. It holds no
// open resources; each operation opens its own store.
type App struct {
	cfg *config.Config
	log logger.Logger
}

// New creates an App.
func New(cfg *config.Config, log logger.Logger) *App {
	return &App{cfg: cfg, log: log}
}

// Config returns the active configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Log returns the active logger.
func (a *App) Log() logger.Logger { return a.log }

// OpenStore opens the configured database.
func (a *App) OpenStore() (*storage.Store, error) {
	return storage.Open(a.cfg.DatabasePath)
}

// DetectProfiles lists browser profiles found on this machine, optionally
// filtered by browser name.
func (a *App) DetectProfiles(browserFilter string) []browser.Profile {
	profiles := browser.DetectProfiles()
	if browserFilter == "" {
		return profiles
	}

	var filtered []browser.Profile
	for _, p := range profiles {
		if p.Browser == browserFilter {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// freshStore removes the database file (plus WAL sidecars) and recreates
// the schema. The caller must hold no open handle.
func (a *App) freshStore() error {
	path := a.cfg.DatabasePath
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing database: %w", err)
		}
	}

	store, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("creating fresh database: %w", err)
	}
	return store.Close()
}
