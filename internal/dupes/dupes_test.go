package dupes

import (
	"context"
	"fmt"
	"testing"

	"github.com/nikbrunner/bmsweep/internal/model"
)

func bm(id, url string) model.Bookmark {
	return model.Bookmark{ID: id, URL: url, Title: id}
}

func TestFindExactGroups(t *testing.T) {
	bookmarks := []model.Bookmark{
		bm("a", "https://example.com/page?utm_source=mail"),
		bm("b", "https://www.example.com/page/"),
		bm("c", "https://other.com/x"),
	}

	report, err := Find(context.Background(), bookmarks, Options{}, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if len(report.ExactGroups) != 1 {
		t.Fatalf("expected 1 exact group, got %d", len(report.ExactGroups))
	}

	group := report.ExactGroups[0]
	if group.MatchType != model.MatchExact {
		t.Errorf("expected match type %q, got %q", model.MatchExact, group.MatchType)
	}
	if group.Similarity != 1.0 {
		t.Errorf("expected similarity 1.0, got %v", group.Similarity)
	}
	if len(group.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(group.Members))
	}

	ids := map[string]bool{}
	for _, m := range group.Members {
		ids[m.ID] = true
	}
	if !ids["a"] || !ids["b"] {
		t.Errorf("expected members a and b, got %v", ids)
	}
}

func TestFindSimilarGroups(t *testing.T) {
	bookmarks := []model.Bookmark{
		bm("a", "https://example.com/docs/intro"),
		bm("b", "https://example.com/docs/intros"),
		bm("c", "https://unrelated.org/completely/different/path"),
	}

	report, err := Find(context.Background(), bookmarks, Options{Threshold: 0.85}, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if len(report.ExactGroups) != 0 {
		t.Errorf("expected no exact groups, got %d", len(report.ExactGroups))
	}
	if len(report.SimilarGroups) != 1 {
		t.Fatalf("expected 1 similar group, got %d", len(report.SimilarGroups))
	}

	group := report.SimilarGroups[0]
	if group.MatchType != model.MatchSimilar {
		t.Errorf("expected match type %q, got %q", model.MatchSimilar, group.MatchType)
	}
	if group.Similarity < 0.85 || group.Similarity >= 1.0 {
		t.Errorf("similarity %v outside [0.85, 1.0)", group.Similarity)
	}

	want := "https://example.com/docs/intro <-> https://example.com/docs/intros"
	if group.NormalizedURL != want {
		t.Errorf("expected label %q, got %q", want, group.NormalizedURL)
	}
	if len(group.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(group.Members))
	}
}

func TestFindExactNotReportedAsSimilar(t *testing.T) {
	// Two bookmarks collapsing to one normalized URL must appear only in
	// the exact pass, never paired against themselves in the similar pass.
	bookmarks := []model.Bookmark{
		bm("a", "https://example.com/page"),
		bm("b", "https://example.com/page/"),
	}

	report, err := Find(context.Background(), bookmarks, Options{}, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if len(report.ExactGroups) != 1 {
		t.Errorf("expected 1 exact group, got %d", len(report.ExactGroups))
	}
	if len(report.SimilarGroups) != 0 {
		t.Errorf("expected no similar groups, got %d", len(report.SimilarGroups))
	}
}

func TestFindNoDuplicates(t *testing.T) {
	bookmarks := []model.Bookmark{
		bm("a", "https://alpha.example.com/first"),
		bm("b", "https://beta.other.org/second/path"),
	}

	report, err := Find(context.Background(), bookmarks, Options{}, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if len(report.Groups()) != 0 {
		t.Errorf("expected no groups, got %d", len(report.Groups()))
	}
	if report.UniqueURLs != 2 {
		t.Errorf("expected 2 unique URLs, got %d", report.UniqueURLs)
	}
	if report.RunID == "" {
		t.Error("expected a run ID even for an empty report")
	}
}

func TestFindFreshRunIDPerCall(t *testing.T) {
	bookmarks := []model.Bookmark{bm("a", "https://example.com/")}

	first, err := Find(context.Background(), bookmarks, Options{}, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	second, err := Find(context.Background(), bookmarks, Options{}, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if first.RunID == second.RunID {
		t.Errorf("expected distinct run IDs, both %q", first.RunID)
	}
	if len(first.RunID) != 8 {
		t.Errorf("expected 8-char run ID, got %q", first.RunID)
	}
}

func TestFindCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var bookmarks []model.Bookmark
	for i := 0; i < 50; i++ {
		bookmarks = append(bookmarks, bm(fmt.Sprintf("b%d", i), fmt.Sprintf("https://example.com/%d", i)))
	}

	if _, err := Find(ctx, bookmarks, Options{}, nil); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFindProgress(t *testing.T) {
	bookmarks := []model.Bookmark{
		bm("a", "https://example.com/one"),
		bm("b", "https://example.com/two"),
	}

	var statuses []string
	_, err := Find(context.Background(), bookmarks, Options{}, func(current, total int, status string) {
		statuses = append(statuses, status)
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if len(statuses) == 0 {
		t.Fatal("expected progress callbacks")
	}
	if statuses[len(statuses)-1] != "Complete" {
		t.Errorf("expected final status Complete, got %q", statuses[len(statuses)-1])
	}
}

func TestPreferAlive(t *testing.T) {
	members := []model.Bookmark{bm("a", "u"), bm("b", "u"), bm("c", "u")}

	tests := []struct {
		name string
		dead map[string]bool
		want string
	}{
		{name: "all alive keeps first", dead: map[string]bool{}, want: "a"},
		{name: "first dead keeps second", dead: map[string]bool{"a": true}, want: "b"},
		{name: "all dead keeps first", dead: map[string]bool{"a": true, "b": true, "c": true}, want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep := PreferAlive(members, tt.dead)
			if keep == nil {
				t.Fatal("expected a keeper")
			}
			if keep.ID != tt.want {
				t.Errorf("expected keeper %q, got %q", tt.want, keep.ID)
			}
		})
	}

	if PreferAlive(nil, nil) != nil {
		t.Error("expected nil for empty members")
	}
}
