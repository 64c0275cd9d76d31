// Package netscape reads and writes the Netscape bookmarks HTML format
// browsers use for manual import/export.
package netscape

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/bmsweep/internal/model"
	"golang.org/x/net/html"
)

// ParseHTML parses Netscape bookmark HTML into manual (unscoped) folders
// and bookmarks: no profile or browser IDs are attached, so imported
// entries never collide with snapshot imports.
func ParseHTML(r io.Reader) ([]model.Folder, []model.Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, err
	}

	var folders []model.Folder
	var bookmarks []model.Bookmark

	// Folder nesting is tracked with a stack of local folder IDs. An H3
	// names a folder; the DL that follows holds its contents.
	var folderStack []*string
	var pendingFolder *model.Folder
	positions := map[string]int{}

	nextPosition := func() int {
		key := ""
		if len(folderStack) > 0 && folderStack[len(folderStack)-1] != nil {
			key = *folderStack[len(folderStack)-1]
		}
		p := positions[key]
		positions[key] = p + 1
		return p
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := textContent(n)
				if name != "" {
					var parentID *string
					if len(folderStack) > 0 {
						parentID = folderStack[len(folderStack)-1]
					}

					folder := model.NewFolder(model.NewFolderParams{
						Name:     name,
						ParentID: parentID,
						Position: nextPosition(),
					})
					folders = append(folders, folder)
					pendingFolder = &folders[len(folders)-1]
				}
				return

			case "a":
				href := attr(n, "href")
				if href == "" {
					return
				}

				title := textContent(n)
				if title == "" {
					title = href
				}

				var folderID *string
				if len(folderStack) > 0 {
					folderID = folderStack[len(folderStack)-1]
				}

				// ADD_DATE is Unix seconds in this format.
				var addedAt *time.Time
				if addDate := attr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						t := time.Unix(ts, 0)
						addedAt = &t
					}
				}

				var tags []string
				if raw := attr(n, "tags"); raw != "" {
					for _, tag := range strings.Split(raw, ",") {
						if tag = strings.TrimSpace(tag); tag != "" {
							tags = append(tags, tag)
						}
					}
				}

				bookmarks = append(bookmarks, model.NewBookmark(model.NewBookmarkParams{
					URL:            href,
					Title:          title,
					FolderID:       folderID,
					BrowserAddedAt: addedAt,
					Position:       nextPosition(),
					Tags:           tags,
				}))
				return

			case "dd":
				// A DD after a bookmark's DT carries its description. Only
				// the direct text counts: a folder's DD is not closed until
				// the next DT, so the folder's whole DL can end up nested
				// inside it and must still be walked.
				if pendingFolder == nil && len(bookmarks) > 0 {
					if text := directText(n); text != "" {
						bookmarks[len(bookmarks)-1].Description = &text
					}
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				return

			case "dl":
				pushed := false
				if pendingFolder != nil {
					id := pendingFolder.ID
					folderStack = append(folderStack, &id)
					pendingFolder = nil
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed && len(folderStack) > 0 {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return folders, bookmarks, nil
}

// textContent returns the flattened text of a node.
func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// directText returns only a node's immediate text, ignoring element
// children.
func directText(n *html.Node) string {
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(text.String())
}

// attr returns the value of an attribute, case-insensitive.
func attr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, a := range n.Attr {
		if strings.ToLower(a.Key) == key {
			return a.Val
		}
	}
	return ""
}
