// Package render formats parsed documents for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/starford/linkorg/internal/models"
)

var (
	rootStyle    = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	enumStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginRight(1)
)

// Tree renders doc as an outline: the document at the root, headings nested
// as in the model and links as leaves.
func Tree(doc *models.Document) string {
	t := tree.Root(rootLabel(doc)).
		RootStyle(rootStyle).
		EnumeratorStyle(enumStyle)
	for _, l := range doc.Links {
		t.Child(LinkLabel(l))
	}
	for _, h := range doc.Headings {
		t.Child(headingNode(h))
	}
	return t.String()
}

func headingNode(h *models.Heading) *tree.Tree {
	t := tree.Root(headingStyle.Render(h.Title)).EnumeratorStyle(enumStyle)
	for _, l := range h.Links {
		t.Child(LinkLabel(l))
	}
	for _, c := range h.Children {
		t.Child(headingNode(c))
	}
	return t
}

func rootLabel(doc *models.Document) string {
	label := fmt.Sprintf("%s (%s)", doc.Metadata.Title, doc.FileName)
	if len(doc.Metadata.Tags) > 0 {
		label += " :" + strings.Join(doc.Metadata.Tags, ":") + ":"
	}
	return label
}

// LinkLabel formats one link as "name -> target (after N)" followed by its
// remarks, if any.
func LinkLabel(l models.Link) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s", l.Name, l.Target)
	if l.ReadTill != "" {
		fmt.Fprintf(&b, " (after %s)", l.ReadTill)
	}
	if l.Description != nil {
		fmt.Fprintf(&b, " - %s", *l.Description)
	}
	if l.Likeability != nil {
		fmt.Fprintf(&b, " [%s]", *l.Likeability)
	}
	return b.String()
}
