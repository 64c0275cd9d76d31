package cli

import (
	"fmt"
	"time"

	"github.com/nikbrunner/bmsweep/internal/deadlink"
	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/nikbrunner/bmsweep/internal/storage"
	"github.com/spf13/cobra"
)

var (
	deadlinksLatest bool
	deadlinksUnique bool
)

var deadlinksCmd = &cobra.Command{
	Use:   "deadlinks",
	Short: "Probe bookmark URLs for dead links, or show the latest scan",
	RunE:  runDeadlinks,
}

func init() {
	deadlinksCmd.Flags().BoolVar(&deadlinksLatest, "latest", false, "show the most recent scan instead of scanning")
	deadlinksCmd.Flags().BoolVar(&deadlinksUnique, "unique", false, "probe each unique normalized URL once")
	rootCmd.AddCommand(deadlinksCmd)
}

func runDeadlinks(cmd *cobra.Command, args []string) error {
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

	if deadlinksLatest {
		runID, err := store.LatestDeadLinkRunID()
		if err != nil {
			return err
		}
		if runID == "" {
			fmt.Println("No dead-link scan recorded yet.")
			return nil
		}
		return printDeadLinkRun(store, runID)
	}

	bookmarks, err := store.ListBookmarks(nil)
	if err != nil {
		return err
	}
	if len(bookmarks) == 0 {
		fmt.Println("No bookmarks to check.")
		return nil
	}

	cfg := a.Config()
	opts := deadlink.Options{
		Concurrency:    cfg.DeadLinkConcurrency,
		Timeout:        cfg.DeadLinkTimeout,
		ExcludeDomains: cfg.ExcludeDomains,
	}

	runID := model.NewRunID()
	dead := 0
	persist := func(r deadlink.Result) {
		if r.Alive {
			return
		}
		dead++
		record := model.DeadLink{
			ID:           model.GenerateUUID(),
			BookmarkID:   r.Bookmark.ID,
			RunID:        runID,
			ErrorMessage: r.Error,
			CheckedAt:    time.Now(),
		}
		if r.StatusCode != 0 {
			code := r.StatusCode
			record.StatusCode = &code
		}
		if err := store.InsertDeadLink(record); err != nil {
			fmt.Printf("  warning: saving dead link: %v\n", err)
		}
	}
	progress := func(completed, total int) {
		fmt.Printf("\rChecking %d/%d", completed, total)
	}

	var checked int
	if deadlinksUnique {
		results := deadlink.CheckUnique(cmd.Context(), bookmarks, opts, persist, nil)
		checked = len(results)
	} else {
		results := deadlink.Check(cmd.Context(), bookmarks, opts, persist, progress)
		checked = len(results)
	}
	fmt.Println()

	fmt.Printf("Checked %d bookmarks, %d dead (run %s)\n", checked, dead, runID)
	if dead > 0 {
		return printDeadLinkRun(store, runID)
	}
	return nil
}

func printDeadLinkRun(store *storage.Store, runID string) error {
	records, err := store.DeadLinksForRun(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s: %d dead links\n", runID, len(records))
	for _, r := range records {
		b, err := store.GetBookmark(r.BookmarkID)
		if err != nil {
			return err
		}
		if b == nil {
			continue
		}
		status := r.ErrorMessage
		if r.StatusCode != nil {
			status = fmt.Sprintf("HTTP %d", *r.StatusCode)
		}
		fmt.Printf("  %-24s %s  %s\n", status, b.ID, b.URL)
	}
	return nil
}
