package parser

import (
	"regexp"
	"strings"

	"github.com/starford/linkorg/internal/models"
)

// Kind is the classification of a single line.
type Kind int

const (
	Unclassifiable Kind = iota
	LinkLine
	HeadingLine
	MetadataLine
)

func (k Kind) String() string {
	switch k {
	case LinkLine:
		return "link"
	case HeadingLine:
		return "heading"
	case MetadataLine:
		return "metadata"
	}
	return "unclassifiable"
}

// Field names a metadata directive.
type Field int

const (
	TitleField Field = iota
	DescriptionField
	DateField
	TagsField
)

// Fact is one metadata directive found on a line. Tags is set only for
// TagsField; Value holds the other fields.
type Fact struct {
	Field Field
	Value string
	Tags  []string
}

// Line is the classification result of one source line. Exactly one of Link,
// Heading and Fact is set, according to Kind.
type Line struct {
	Kind    Kind
	Number  int
	Link    *models.Link
	Heading *models.Heading
	Fact    *Fact
}

// Classify decides what a line is in the given dialect. Patterns are tried in
// order link, heading, title, description, date, tags; the first match wins.
func Classify(text string, number int, d models.Dialect) Line {
	g, err := grammarFor(d)
	if err != nil {
		return Line{Kind: Unclassifiable, Number: number}
	}
	return g.classify(text, number)
}

func (g *grammar) classify(text string, number int) Line {
	if m := g.link.FindStringSubmatch(text); m != nil {
		return Line{Kind: LinkLine, Number: number, Link: g.newLink(m, number)}
	}
	if m := g.heading.FindStringSubmatch(text); m != nil {
		h := models.NewHeading(strings.TrimSpace(m[2]), len(m[1]), number)
		return Line{Kind: HeadingLine, Number: number, Heading: h}
	}
	for _, d := range []struct {
		re    *regexp.Regexp
		field Field
	}{
		{g.title, TitleField},
		{g.description, DescriptionField},
		{g.date, DateField},
	} {
		if m := d.re.FindStringSubmatch(text); m != nil {
			return Line{Kind: MetadataLine, Number: number, Fact: &Fact{Field: d.field, Value: strings.TrimSpace(m[1])}}
		}
	}
	if m := g.tags.FindStringSubmatch(text); m != nil {
		return Line{Kind: MetadataLine, Number: number, Fact: &Fact{Field: TagsField, Tags: splitTags(m[1])}}
	}
	return Line{Kind: Unclassifiable, Number: number}
}

func (g *grammar) newLink(m []string, number int) *models.Link {
	l := &models.Link{
		Target:     m[g.targetGroup],
		Name:       m[g.nameGroup],
		ReadTill:   m[readTillGroup],
		LineNumber: number,
	}
	first, second := m[firstRemarkGroup], m[secondRemarkGroup]
	switch {
	case first != "" && second != "":
		l.Description = strPtr(first)
		l.Likeability = strPtr(second)
	case first != "" && readRemark.MatchString(first):
		l.Likeability = strPtr(first)
	case first != "":
		l.Description = strPtr(first)
	case second != "":
		l.Likeability = strPtr(second)
	}
	return l
}

// splitTags splits a colon-delimited tag list, dropping empty segments.
func splitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ":") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func strPtr(s string) *string { return &s }
