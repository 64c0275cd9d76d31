package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List detected and stored browser profiles",
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Log().Sync()

	detected := a.DetectProfiles("")
	fmt.Printf("Detected profiles (%d):\n", len(detected))
	for _, p := range detected {
		fmt.Printf("  %-10s %-20s %-25s %d bookmarks\n", p.Browser, p.Dir, p.DisplayName, p.BookmarkCount)
	}

	store, err := a.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.ListProfiles()
	if err != nil {
		return err
	}

	fmt.Printf("\nStored profiles (%d):\n", len(stored))
	for _, p := range stored {
		count, err := store.CountBookmarksByProfile(p.ID)
		if err != nil {
			return err
		}
		last := "never"
		if p.LastSyncedAt != nil {
			last = p.LastSyncedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("  %-10s %-20s %-25s %d bookmarks, last synced %s\n",
			p.Browser, p.ProfileDir, p.Label(), count, last)
	}
	return nil
}
