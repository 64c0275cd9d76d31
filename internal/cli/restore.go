package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nikbrunner/bmsweep/internal/snapshot"
	"github.com/nikbrunner/bmsweep/internal/sweep"
	"github.com/spf13/cobra"
)

var restoreNoBackup bool

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-file]",
	Short: "Restore a browser's bookmarks from a sweep backup",
	Long: `Without an argument, restore lists the backups found in the backup
directory. With one, it copies that backup back over the matching
profile's Bookmarks file, replacing the browser's current bookmarks.
The replaced file is saved aside first so the restore can be undone.
Close the browser before restoring; it rewrites the file on exit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreNoBackup, "no-backup", false, "skip the pre-restore copy of the current file")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Log().Sync()

	if len(args) == 0 {
		return listBackups(a.Config().BackupDir)
	}

	path := args[0]
	// A bare filename refers to the backup dir.
	if !strings.ContainsRune(path, filepath.Separator) {
		path = filepath.Join(a.Config().BackupDir, path)
	}

	backup, err := sweep.ParseBackup(path)
	if err != nil {
		return err
	}

	var target string
	for _, p := range a.DetectProfiles("") {
		if backup.Matches(p.Browser, p.Dir) {
			target = p.BookmarksPath
			break
		}
	}
	if target == "" {
		return fmt.Errorf("no detected profile matches %s/%s; the profile may have been removed",
			backup.Browser, backup.ProfileDir)
	}

	result, err := sweep.Restore(backup, target, sweep.Options{
		BackupDir:    a.Config().BackupDir,
		CreateBackup: !restoreNoBackup,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Restored %d bookmarks to %s\n", snapshot.CountBookmarks(result.RestoredTo), result.RestoredTo)
	if result.PreRestorePath != "" {
		fmt.Printf("Replaced file saved as %s\n", result.PreRestorePath)
	}
	return nil
}

func listBackups(dir string) error {
	backups, err := sweep.ListBackups(dir)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("No backups found. Backups are created when sweep rewrites a browser file.")
		return nil
	}

	fmt.Printf("Backups in %s (newest first):\n", dir)
	for _, b := range backups {
		fmt.Printf("  %-10s %-20s %s  %4d bookmarks  %s\n",
			b.Browser, b.ProfileDir,
			b.Timestamp.Format("2006-01-02 15:04:05"),
			snapshot.CountBookmarks(b.Path),
			filepath.Base(b.Path))
	}
	return nil
}
