package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag <bookmark-id> [tag...]",
	Short: "Attach tags to a bookmark, or list its tags",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTag,
}

func init() {
	rootCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
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

	bookmark, err := store.GetBookmark(args[0])
	if err != nil {
		return err
	}
	if bookmark == nil {
		return fmt.Errorf("bookmark not found: %s", args[0])
	}

	for _, name := range args[1:] {
		tag, err := store.EnsureTag(name)
		if err != nil {
			return err
		}
		if err := store.TagBookmark(bookmark.ID, tag.ID); err != nil {
			return err
		}
	}

	tags, err := store.TagsForBookmark(bookmark.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n%s\n", bookmark.Title, bookmark.URL)
	if len(tags) == 0 {
		fmt.Println("(no tags)")
	} else {
		fmt.Printf("tags: %s\n", strings.Join(tags, ", "))
	}
	return nil
}
