package cli

import (
	"fmt"

	"github.com/nikbrunner/bmsweep/internal/app"
	"github.com/spf13/cobra"
)

var (
	refreshNoBackup      bool
	refreshFresh         bool
	refreshSkipImport    bool
	refreshSkipDupes     bool
	refreshSkipDeadlinks bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run the whole pipeline: backup, import, dupes, dead links",
	RunE:  runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshNoBackup, "no-backup", false, "skip the database backup")
	refreshCmd.Flags().BoolVar(&refreshFresh, "fresh", false, "wipe the database after backing it up")
	refreshCmd.Flags().BoolVar(&refreshSkipImport, "skip-import", false, "skip the import phase")
	refreshCmd.Flags().BoolVar(&refreshSkipDupes, "skip-dupes", false, "skip the duplicate scan")
	refreshCmd.Flags().BoolVar(&refreshSkipDeadlinks, "skip-deadlinks", false, "skip the dead-link scan")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Log().Sync()

	summary, err := a.Refresh(cmd.Context(), app.RefreshOptions{
		BackupStore:   !refreshNoBackup,
		Fresh:         refreshFresh,
		SkipImport:    refreshSkipImport,
		SkipDupes:     refreshSkipDupes,
		SkipDeadLinks: refreshSkipDeadlinks,
		OnProgress: func(phase, status string) {
			fmt.Printf("[%s] %s\n", phase, status)
		},
	})
	if err != nil {
		return err
	}

	fmt.Println("\nSummary:")
	if summary.StoreBackupPath != "" {
		fmt.Printf("  backup: %s\n", summary.StoreBackupPath)
	}
	if summary.FreshStore {
		fmt.Println("  fresh database created")
	}
	if !refreshSkipImport {
		fmt.Printf("  import: %d profiles, %d bookmarks added (%d skipped)\n",
			summary.ProfilesProcessed, summary.BookmarksAdded, summary.BookmarksSkipped)
	}
	if !refreshSkipDupes {
		fmt.Printf("  dupes: %d groups (run %s)\n", summary.DuplicateGroups, summary.DuplicateRunID)
	}
	if !refreshSkipDeadlinks {
		fmt.Printf("  dead links: %d of %d checked (run %s)\n",
			summary.DeadLinks, summary.URLsChecked, summary.DeadLinkRunID)
	}
	for _, e := range summary.Errors {
		fmt.Printf("  warning: %s\n", e)
	}
	return nil
}
