package cli

import (
	"fmt"

	"github.com/nikbrunner/bmsweep/internal/dupes"
	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/nikbrunner/bmsweep/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dupesLatest    bool
	dupesThreshold float64
)

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Scan for duplicate bookmarks, or show the latest scan",
	RunE:  runDupes,
}

func init() {
	dupesCmd.Flags().BoolVar(&dupesLatest, "latest", false, "show the most recent scan instead of scanning")
	dupesCmd.Flags().Float64Var(&dupesThreshold, "threshold", 0, "similarity threshold for near-duplicates (default from config)")
	rootCmd.AddCommand(dupesCmd)
}

func runDupes(cmd *cobra.Command, args []string) error {
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

	if dupesLatest {
		runID, err := store.LatestDuplicateRunID("")
		if err != nil {
			return err
		}
		if runID == "" {
			fmt.Println("No duplicate scan recorded yet.")
			return nil
		}
		return printDuplicateRun(store, runID)
	}

	bookmarks, err := store.ListBookmarks(nil)
	if err != nil {
		return err
	}
	if len(bookmarks) == 0 {
		fmt.Println("No bookmarks to check.")
		return nil
	}

	threshold := dupesThreshold
	if threshold == 0 {
		threshold = a.Config().SimilarityThreshold
	}

	report, err := dupes.Find(cmd.Context(), bookmarks, dupes.Options{Threshold: threshold}, func(current, total int, status string) {
		fmt.Printf("\r  %d/%d: %-40.40s", current, total, status)
	})
	if err != nil {
		return err
	}
	fmt.Println()

	for _, group := range report.Groups() {
		if err := store.InsertDuplicateGroup(group); err != nil {
			return err
		}
	}

	fmt.Printf("Checked %d bookmarks (%d unique URLs), run %s\n", len(bookmarks), report.UniqueURLs, report.RunID)
	fmt.Printf("Found %d exact and %d similar groups\n", len(report.ExactGroups), len(report.SimilarGroups))
	return printDuplicateRun(store, report.RunID)
}

func printDuplicateRun(store *storage.Store, runID string) error {
	groups, err := store.DuplicateGroupsForRun(runID)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Printf("Run %s found no duplicates.\n", runID)
		return nil
	}

	fmt.Printf("Run %s: %d groups\n", runID, len(groups))
	for _, group := range groups {
		if group.MatchType == model.MatchExact {
			fmt.Printf("\n[exact] %s\n", group.NormalizedURL)
		} else {
			fmt.Printf("\n[similar %.2f] %s\n", group.Similarity, group.NormalizedURL)
		}
		for _, member := range group.Members {
			fmt.Printf("  %s  %s\n", member.ID, member.URL)
		}
	}
	return nil
}
