package cli

import (
	"fmt"
	"os"

	"github.com/nikbrunner/bmsweep/internal/importer"
	"github.com/nikbrunner/bmsweep/internal/netscape"
	"github.com/spf13/cobra"
)

var importBrowser string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import bookmarks from detected browser profiles",
	RunE:  runImport,
}

var importHTMLCmd = &cobra.Command{
	Use:   "import-html <file>",
	Short: "Import a Netscape bookmarks HTML export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportHTML,
}

func init() {
	importCmd.Flags().StringVarP(&importBrowser, "browser", "b", "", "only import this browser (Chrome, Edge, Brave, ...)")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(importHTMLCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Log().Sync()

	profiles := a.DetectProfiles(importBrowser)
	if len(profiles) == 0 {
		return fmt.Errorf("no browser profiles found")
	}

	store, err := a.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	results := importer.ImportAll(cmd.Context(), store, profiles, func(phase importer.Phase, current, total int, label string) {
		fmt.Printf("\r  %s %d/%d: %-50.50s", phase, current, total, label)
	})
	fmt.Println()

	for _, r := range results {
		fmt.Printf("%s/%s: %d folders and %d bookmarks added (%d/%d skipped)\n",
			r.Profile.Browser, r.Profile.ProfileDir,
			r.FoldersAdded, r.BookmarksAdded, r.FoldersSkipped, r.BookmarksSkipped)
		for _, e := range r.Errors {
			fmt.Printf("  warning: %s\n", e)
		}
	}
	return nil
}

func runImportHTML(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Log().Sync()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer f.Close()

	folders, bookmarks, err := netscape.ParseHTML(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	store, err := a.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, folder := range folders {
		if err := store.InsertFolder(folder); err != nil {
			return err
		}
	}
	for _, bookmark := range bookmarks {
		if err := store.InsertBookmark(bookmark); err != nil {
			return err
		}
		for _, name := range bookmark.Tags {
			tag, err := store.EnsureTag(name)
			if err != nil {
				return err
			}
			if err := store.TagBookmark(bookmark.ID, tag.ID); err != nil {
				return err
			}
		}
	}

	fmt.Printf("Imported %d folders and %d bookmarks from %s\n", len(folders), len(bookmarks), args[0])
	return nil
}
