package render

import (
	"strings"
	"testing"

	"github.com/starford/linkorg/internal/models"
)

func ptr(s string) *string { return &s }

func TestLinkLabel(t *testing.T) {
	tests := []struct {
		name string
		link models.Link
		want string
	}{
		{"bare", models.Link{Name: "Go", Target: "https://go.dev"}, "Go -> https://go.dev"},
		{"read till", models.Link{Name: "Go", Target: "https://go.dev", ReadTill: "3"}, "Go -> https://go.dev (after 3)"},
		{
			"remarks",
			models.Link{Name: "Go", Target: "u", ReadTill: "1", Description: ptr("tour"), Likeability: ptr("must read")},
			"Go -> u (after 1) - tour [must read]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinkLabel(tt.link); got != tt.want {
				t.Errorf("LinkLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTree(t *testing.T) {
	doc := models.NewDocument("reading.org")
	doc.Metadata.Title = "Reading"
	doc.Metadata.Tags = []string{"go"}
	doc.Links = append(doc.Links, models.Link{Name: "Root", Target: "r"})
	top := models.NewHeading("Articles", 1, 2)
	sub := models.NewHeading("Papers", 2, 3)
	sub.Links = append(sub.Links, models.Link{Name: "Raft", Target: "https://raft.github.io", ReadTill: "7"})
	top.Children = append(top.Children, sub)
	doc.Headings = append(doc.Headings, top)

	out := Tree(doc)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{"Reading (reading.org) :go:", "Root -> r", "Articles", "Papers", "Raft -> https://raft.github.io (after 7)"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), out)
	}
	for i, w := range want {
		if !strings.Contains(lines[i], w) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], w)
		}
	}

	// Nesting shows up as increasing indentation.
	if strings.Index(lines[4], "Raft") <= strings.Index(lines[3], "Papers") {
		t.Errorf("link not nested under its heading:\n%s", out)
	}
}

func TestTree_EmptyDocument(t *testing.T) {
	out := Tree(models.NewDocument("empty.md"))
	if !strings.Contains(out, models.DefaultTitle+" (empty.md)") {
		t.Errorf("out = %q", out)
	}
}
