package cli

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/bmsweep/internal/app"
	"github.com/nikbrunner/bmsweep/internal/sweep"
	"github.com/spf13/cobra"
)

var (
	sweepApply      bool
	sweepFrom       []string
	sweepIDs        []string
	sweepNoBackup   bool
	sweepPruneStore bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete flagged bookmarks from the browsers' own files",
	Long: `sweep assembles a deletion plan from the latest persisted scans and,
with --apply, rewrites the affected Bookmarks files (after backing each
one up). Close the affected browsers first; Chromium rewrites its
bookmark file on exit and would clobber the sweep.

Without --apply the plan is only printed.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepApply, "apply", false, "rewrite the browser files (default: dry run)")
	sweepCmd.Flags().StringSliceVar(&sweepFrom, "from", []string{"dead-links"}, "plan sources: dead-links, duplicates")
	sweepCmd.Flags().StringSliceVar(&sweepIDs, "id", nil, "explicit local bookmark IDs to delete")
	sweepCmd.Flags().BoolVar(&sweepNoBackup, "no-backup", false, "skip the per-file backup")
	sweepCmd.Flags().BoolVar(&sweepPruneStore, "prune-store", false, "also delete the swept rows from the local store")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Log().Sync()

	opts := app.PlanOptions{BookmarkIDs: sweepIDs}
	for _, source := range sweepFrom {
		switch source {
		case "dead-links":
			opts.FromDeadLinks = true
		case "duplicates":
			opts.FromDuplicates = true
		default:
			return fmt.Errorf("unknown plan source %q (want dead-links or duplicates)", source)
		}
	}

	store, err := a.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	plan, err := a.PlanFromScans(store, opts)
	if err != nil {
		return err
	}

	if plan.TotalTargets() == 0 && len(plan.Unplannable) == 0 {
		fmt.Println("Nothing to sweep.")
		return nil
	}

	printPlan(plan)

	if !sweepApply {
		fmt.Println("\nDry run. Re-run with --apply to rewrite the browser files.")
		return nil
	}

	summary, err := a.ApplyPlan(store, plan, app.ApplyOptions{
		CreateBackup: !sweepNoBackup,
		PruneStore:   sweepPruneStore,
		OnResult: func(req sweep.Request, result *sweep.Result, err error) {
			if err != nil {
				fmt.Printf("%s/%s: error: %v\n", req.Browser, req.ProfileDir, err)
				return
			}
			fmt.Printf("%s/%s: deleted %d", result.Browser, result.ProfileDir, result.Deleted)
			if result.BackupPath != "" {
				fmt.Printf(" (backup: %s)", result.BackupPath)
			}
			fmt.Println()
			if result.Warning != "" {
				fmt.Printf("  warning: %s\n", result.Warning)
			}
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("Swept %d bookmarks.\n", summary.Swept)
	if sweepPruneStore {
		fmt.Printf("Pruned %d rows from the local store.\n", summary.Pruned)
	}
	return nil
}

func printPlan(plan *app.Plan) {
	fmt.Printf("Plan: %d bookmarks across %d profiles\n", plan.TotalTargets(), len(plan.Requests))
	for _, req := range plan.Requests {
		fmt.Printf("\n%s/%s (%s):\n", req.Browser, req.ProfileDir, req.BookmarksPath)
		for _, t := range req.Targets {
			fmt.Printf("  [%s] %s\n", strings.ReplaceAll(t.Reason, "_", " "), t.URL)
		}
	}
	if len(plan.Unplannable) > 0 {
		fmt.Printf("\nNot in any browser file (local-only, use --prune-store to remove):\n")
		for _, c := range plan.Unplannable {
			fmt.Printf("  [%s] %s\n", strings.ReplaceAll(c.Reason, "_", " "), c.Bookmark.URL)
		}
	}
}
