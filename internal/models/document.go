// Package models defines the document model produced by parsing a note file.
package models

import "time"

// Metadata defaults used when a file carries no directive for the field.
const (
	DefaultTitle       = "No title"
	DefaultDescription = "No description"
	DefaultDate        = "No creation Date found"
)

// Link is a reference discovered on a single line.
type Link struct {
	Name        string  `json:"name"`
	Target      string  `json:"link"`
	ReadTill    string  `json:"read_till"`
	Description *string `json:"description"`
	Likeability *string `json:"likeability"`
	LineNumber  int     `json:"line_number"`
}

// Heading is one outline node. It owns its child headings and the links that
// appear under it before the first child or the next sibling.
type Heading struct {
	Title      string     `json:"title"`
	Level      int        `json:"level"`
	LineNumber int        `json:"line_number"`
	Children   []*Heading `json:"heading"`
	Links      []Link     `json:"links"`
}

// NewHeading returns a heading with empty (non-nil) children and links.
func NewHeading(title string, level, line int) *Heading {
	return &Heading{
		Title:      title,
		Level:      level,
		LineNumber: line,
		Children:   []*Heading{},
		Links:      []Link{},
	}
}

// Metadata holds document-level directives.
type Metadata struct {
	Title       string   `json:"file_title"`
	Description string   `json:"file_description"`
	Date        string   `json:"file_date"`
	Tags        []string `json:"file_tags"`
}

// NewMetadata returns metadata populated with the defaults.
func NewMetadata() Metadata {
	return Metadata{
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Date:        DefaultDate,
		Tags:        []string{},
	}
}

// Document is the result of parsing one note file. Links holds the links that
// appear before the first heading.
type Document struct {
	FileName string     `json:"file_name"`
	Metadata Metadata   `json:"file_meta_data"`
	Headings []*Heading `json:"heading"`
	Links    []Link     `json:"links"`
}

// NewDocument returns an empty document for the given file name.
func NewDocument(fileName string) *Document {
	return &Document{
		FileName: fileName,
		Metadata: NewMetadata(),
		Headings: []*Heading{},
		Links:    []Link{},
	}
}

// FileMeta is a lightweight description of a candidate note file, taken
// from the directory listing alone.
type FileMeta struct {
	Path      string    `json:"path"`
	Dialect   Dialect   `json:"dialect"`
	UpdatedAt time.Time `json:"updated_at"`
}
