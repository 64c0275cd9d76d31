package cli

import (
	"fmt"
	"os"

	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/nikbrunner/bmsweep/internal/netscape"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the collection as Netscape bookmarks HTML",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: ~/Downloads/bookmarks-export-<date>.html)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Log().Sync()

	store, err := a.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	folders, err := store.ListFolders(nil)
	if err != nil {
		return err
	}
	bookmarks, err := store.ListBookmarks(nil)
	if err != nil {
		return err
	}
	for i := range bookmarks {
		tags, err := store.TagsForBookmark(bookmarks[i].ID)
		if err != nil {
			return err
		}
		bookmarks[i].Tags = tags
	}

	doc := netscape.ExportHTML(&model.Store{Folders: folders, Bookmarks: bookmarks})

	path := exportOutput
	if path == "" {
		path, err = netscape.DefaultExportPath()
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("Exported %d bookmarks in %d folders to %s\n", len(bookmarks), len(folders), path)
	return nil
}
