package parser

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/starford/linkorg/internal/apperr"
	"github.com/starford/linkorg/internal/models"
)

// word is a Unicode word character; RE2's \w only covers ASCII.
const word = `\p{L}\p{N}_`

// remarks matches up to two parenthesized remarks (possibly split by table
// cell pipes) followed by the "-- after <token>" progress marker.
const remarks = `(?: *\|)? *(?:\(([^()]*)\))?(?: *\|)? *(?:\(([^()]*)\))?(?: *\|)?.*-- ?(?i:after) ?([`+word+`.]*) *(?: *\|)?`

// grammar is the pattern set of one dialect. The link pattern captures the
// bracket pair in source order; targetGroup and nameGroup map it back.
type grammar struct {
	dialect     models.Dialect
	link        *regexp.Regexp
	heading     *regexp.Regexp
	title       *regexp.Regexp
	description *regexp.Regexp
	date        *regexp.Regexp
	tags        *regexp.Regexp
	targetGroup int
	nameGroup   int
}

// Capture groups of the link pattern that follow the bracket pair.
const (
	firstRemarkGroup  = 3
	secondRemarkGroup = 4
	readTillGroup     = 5
)

var (
	orgGrammar = &grammar{
		dialect:     models.Org,
		link:        regexp.MustCompile(`^(?: *\|)? *\[\[([^\]]*)\]\[([^\]]*)\]\]` + remarks),
		heading:     regexp.MustCompile(`^(\*+)[ \t]+([`+word+`].*)$`),
		title:       regexp.MustCompile(`^#\+(?i:title): *(.*)$`),
		description: regexp.MustCompile(`^#\+(?i:description): *(.*)$`),
		date:        regexp.MustCompile(`^#\+(?i:date): *\[(.*)\]`),
		tags:        regexp.MustCompile(`^#\+(?i:filetags): *(.*)$`),
		targetGroup: 1,
		nameGroup:   2,
	}

	markdownGrammar = &grammar{
		dialect:     models.Markdown,
		link:        regexp.MustCompile(`^(?: *\|)? *\[([^\]]*)\]\(([^)]*)\)` + remarks),
		heading:     regexp.MustCompile(`^(#+)[ \t]+([`+word+`].*)$`),
		title:       regexp.MustCompile(`^(?i:title): *(.*)$`),
		description: regexp.MustCompile(`^(?i:description): *(.*)$`),
		date:        regexp.MustCompile(`^(?i:date): *\[(.*)\]`),
		tags:        regexp.MustCompile(`^(?i:filetags): *(.*)$`),
		targetGroup: 2,
		nameGroup:   1,
	}

	grammars = map[models.Dialect]*grammar{
		models.Org:      orgGrammar,
		models.Markdown: markdownGrammar,
	}

	// readRemark marks a remark as a rating rather than a description.
	readRemark = regexp.MustCompile(`(?i)\bread\b`)
)

func grammarFor(d models.Dialect) (*grammar, error) {
	g, ok := grammars[d]
	if !ok {
		return nil, fmt.Errorf("parser: dialect %q: %w", d, apperr.ErrUnsupportedExtension)
	}
	return g, nil
}

// DialectFor resolves the dialect of a note file from its extension.
func DialectFor(path string) (models.Dialect, error) {
	ext := filepath.Ext(path)
	d, ok := models.DialectFromExt(ext)
	if !ok {
		return "", fmt.Errorf("parser: %s: %w %q", path, apperr.ErrUnsupportedExtension, ext)
	}
	return d, nil
}
