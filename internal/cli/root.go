// Package cli implements the bmsweep commands.
package cli

import (
	"fmt"
	"os"

	"github.com/nikbrunner/bmsweep/internal/app"
	"github.com/nikbrunner/bmsweep/internal/config"
	"github.com/nikbrunner/bmsweep/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "bmsweep",
	Short: "Reconcile and clean up browser bookmarks",
	Long: `bmsweep imports bookmarks from every Chromium-family browser profile on
this machine into one local database, finds duplicate and dead links,
and can delete the flagged bookmarks from the browsers' own files
(with backups).

Typical flow:
  bmsweep profiles               # see what was detected
  bmsweep import                 # pull everything into the local store
  bmsweep dupes                  # scan for duplicate URLs
  bmsweep deadlinks --unique     # probe each unique URL once
  bmsweep sweep --from dead-links            # dry-run the deletion plan
  bmsweep sweep --from dead-links --apply    # rewrite the browser files

Or all at once:
  bmsweep refresh`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/bmsweep/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// newApp loads configuration and builds the shared App for a command run.
func newApp() (*app.App, error) {
	path := cfgFile
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return app.New(cfg, logger.New(level, cfg.PrettyLog)), nil
}
