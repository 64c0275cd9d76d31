package netscape

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmsweep/internal/model"
)

// DefaultExportPath returns the default export file path:
// ~/Downloads/bookmarks-export-YYYY-MM-DD.html.
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the collection as Netscape bookmark HTML, suitable
// for re-import into any browser.
func ExportHTML(store *model.Store) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeItems(&b, store, nil, 1)

	b.WriteString("</DL><p>\n")
	return b.String()
}

// writeItems recursively writes folders then bookmarks for a given parent.
func writeItems(b *strings.Builder, store *model.Store, parentID *string, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, folder := range store.GetFoldersInFolder(parentID) {
		fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(folder.Name))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)

		folderID := folder.ID
		writeItems(b, store, &folderID, indent+1)

		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}

	for _, bookmark := range store.GetBookmarksInFolder(parentID) {
		timestamp := bookmark.CreatedAt.Unix()
		if bookmark.BrowserAddedAt != nil {
			timestamp = bookmark.BrowserAddedAt.Unix()
		}
		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\"",
			prefix,
			html.EscapeString(bookmark.URL),
			timestamp,
		)
		if !bookmark.UpdatedAt.IsZero() {
			fmt.Fprintf(b, " LAST_MODIFIED=\"%d\"", bookmark.UpdatedAt.Unix())
		}
		if len(bookmark.Tags) > 0 {
			fmt.Fprintf(b, " TAGS=\"%s\"", html.EscapeString(strings.Join(bookmark.Tags, ",")))
		}
		fmt.Fprintf(b, ">%s</A>\n", html.EscapeString(bookmark.Title))

		// Firefox reads the DD line back as the bookmark's description.
		if desc := exportDescription(bookmark); desc != "" {
			fmt.Fprintf(b, "%s<DD>%s\n", prefix, html.EscapeString(desc))
		}
	}
}

// exportDescription prefers the description; local notes stand in when
// that is all the bookmark carries.
func exportDescription(b model.Bookmark) string {
	if b.Description != nil && *b.Description != "" {
		return *b.Description
	}
	if b.Notes != nil && *b.Notes != "" {
		return *b.Notes
	}
	return ""
}
