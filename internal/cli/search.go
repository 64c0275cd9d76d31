package cli

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/nikbrunner/bmsweep/internal/model"
	"github.com/nikbrunner/bmsweep/internal/search"
	"github.com/spf13/cobra"
)

var (
	searchFuzzy bool
	pickCopy    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored bookmarks",
	Long: `search runs a full-text query over titles, URLs, descriptions, and
notes. With --fuzzy, subsequence matching over title and URL is used
instead, so "tanrou" still finds "TanStack Router".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var pickCmd = &cobra.Command{
	Use:   "pick <query>",
	Short: "Fuzzy-pick the best matching bookmark",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPick,
}

func init() {
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "fuzzy matching instead of full-text search")
	pickCmd.Flags().BoolVar(&pickCopy, "copy", false, "copy the URL to the clipboard")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(pickCmd)
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	query := joinArgs(args)

	var matches []model.Bookmark
	if searchFuzzy {
		bookmarks, err := store.ListBookmarks(nil)
		if err != nil {
			return err
		}
		for _, r := range search.FuzzySearch(bookmarks, query) {
			matches = append(matches, *r.Bookmark)
		}
	} else {
		matches, err = store.SearchBookmarks(query)
		if err != nil {
			return err
		}
	}

	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, b := range matches {
		fmt.Printf("%-40.40s %s\n", b.Title, b.URL)
	}
	return nil
}

func runPick(cmd *cobra.Command, args []string) error {
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

	bookmarks, err := store.ListBookmarks(nil)
	if err != nil {
		return err
	}

	results := search.FuzzySearch(bookmarks, joinArgs(args))
	if len(results) == 0 {
		return fmt.Errorf("no match")
	}

	best := results[0].Bookmark
	fmt.Printf("%s\n%s\n", best.Title, best.URL)

	if pickCopy {
		if err := clipboard.WriteAll(best.URL); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		fmt.Println("URL copied to clipboard.")
	}
	return nil
}
