// Package config loads the bmsweep configuration from a YAML file with
// BMSWEEP_* environment variable overrides.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	DatabasePath        string        `yaml:"databasePath"`
	BackupDir           string        `yaml:"backupDir"`
	LogLevel            string        `yaml:"logLevel"`
	PrettyLog           bool          `yaml:"prettyLog"`
	SimilarityThreshold float64       `yaml:"similarityThreshold"`
	DeadLinkConcurrency int           `yaml:"deadLinkConcurrency"`
	DeadLinkTimeout     time.Duration `yaml:"deadLinkTimeout"`
	ExcludeDomains      []string      `yaml:"excludeDomains"`
}

// DeadLinkConcurrency is clamped to this ceiling.
const MaxDeadLinkConcurrency = 20

// Default returns the default configuration. Paths are rooted in the
// user's config/home directories.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DatabasePath:        filepath.Join(home, ".config", "bmsweep", "bmsweep.db"),
		BackupDir:           filepath.Join(home, ".config", "bmsweep", "browser_backups"),
		LogLevel:            "info",
		PrettyLog:           true,
		SimilarityThreshold: 0.85,
		DeadLinkConcurrency: 10,
		DeadLinkTimeout:     10 * time.Second,
		ExcludeDomains:      []string{},
	}
}

// DefaultPath returns the default config file path: ~/.config/bmsweep/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bmsweep", "config.yaml"), nil
}

// Load reads config from the YAML file, creating it with defaults when it
// does not exist, then applies environment overrides. A save failure on
// first run is non-fatal; defaults are returned anyway.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_ = Save(path, &cfg)
			applyEnv(&cfg)
			return &cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// Save writes config to the YAML file, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyDefaults fills zero-valued fields left unset by a partial file.
func applyDefaults(cfg *Config) {
	defaults := Default()
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaults.DatabasePath
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = defaults.BackupDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if cfg.DeadLinkConcurrency == 0 {
		cfg.DeadLinkConcurrency = defaults.DeadLinkConcurrency
	}
	if cfg.DeadLinkTimeout == 0 {
		cfg.DeadLinkTimeout = defaults.DeadLinkTimeout
	}
	if cfg.ExcludeDomains == nil {
		cfg.ExcludeDomains = defaults.ExcludeDomains
	}
}

// applyEnv overrides file values from BMSWEEP_* environment variables.
func applyEnv(cfg *Config) {
	cfg.DatabasePath = getenv("BMSWEEP_DATABASE_PATH", cfg.DatabasePath)
	cfg.BackupDir = getenv("BMSWEEP_BACKUP_DIR", cfg.BackupDir)
	cfg.LogLevel = getenv("BMSWEEP_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = getenvBool("BMSWEEP_PRETTY_LOG", cfg.PrettyLog)
	cfg.SimilarityThreshold = getenvFloat("BMSWEEP_SIMILARITY_THRESHOLD", cfg.SimilarityThreshold)
	cfg.DeadLinkConcurrency = getenvInt("BMSWEEP_DEADLINK_CONCURRENCY", cfg.DeadLinkConcurrency)
	cfg.DeadLinkTimeout = getenvDuration("BMSWEEP_DEADLINK_TIMEOUT", cfg.DeadLinkTimeout)
	if v := os.Getenv("BMSWEEP_EXCLUDE_DOMAINS"); v != "" {
		parts := strings.Split(v, ",")
		domains := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				domains = append(domains, p)
			}
		}
		cfg.ExcludeDomains = domains
	}

	if cfg.DeadLinkConcurrency > MaxDeadLinkConcurrency {
		cfg.DeadLinkConcurrency = MaxDeadLinkConcurrency
	}
	if cfg.DeadLinkConcurrency < 1 {
		cfg.DeadLinkConcurrency = 1
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
