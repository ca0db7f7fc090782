package parser

import (
	"github.com/starford/linkorg/internal/models"
)

// Builder assembles a document tree from classified lines in a single pass.
//
// The cursor is a stack mirroring the path from the root to the most recently
// inserted heading. Links attach to the top of the stack, or to the document
// when the stack is empty.
type Builder struct {
	doc   *models.Document
	stack []*models.Heading
}

// NewBuilder returns a builder that populates doc in place.
func NewBuilder(doc *models.Document) *Builder {
	return &Builder{doc: doc}
}

// Add applies one classified line to the document.
func (b *Builder) Add(l Line) {
	switch l.Kind {
	case LinkLine:
		b.addLink(*l.Link)
	case HeadingLine:
		b.addHeading(l.Heading)
	case MetadataLine:
		b.applyFact(l.Fact)
	}
}

// Level returns the level of the most recently inserted heading that is
// still open, or 0 before the first heading.
func (b *Builder) Level() int {
	if len(b.stack) == 0 {
		return 0
	}
	return b.stack[len(b.stack)-1].Level
}

// Document returns the document being built.
func (b *Builder) Document() *models.Document { return b.doc }

func (b *Builder) addLink(link models.Link) {
	if len(b.stack) == 0 {
		b.doc.Links = append(b.doc.Links, link)
		return
	}
	top := b.stack[len(b.stack)-1]
	top.Links = append(top.Links, link)
}

// addHeading pops every open heading at the same or a deeper level, then
// attaches h to what remains. A skipped level attaches to the nearest
// shallower ancestor; missing intermediate levels are not fabricated.
func (b *Builder) addHeading(h *models.Heading) {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].Level >= h.Level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	if len(b.stack) == 0 {
		b.doc.Headings = append(b.doc.Headings, h)
	} else {
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, h)
	}
	b.stack = append(b.stack, h)
}

// applyFact overwrites the matching metadata field; the last directive wins.
func (b *Builder) applyFact(f *Fact) {
	md := &b.doc.Metadata
	switch f.Field {
	case TitleField:
		md.Title = f.Value
	case DescriptionField:
		md.Description = f.Value
	case DateField:
		md.Date = f.Value
	case TagsField:
		md.Tags = f.Tags
	}
}
