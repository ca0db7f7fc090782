package models

// Dialect identifies one of the two supported note markups.
type Dialect string

const (
	// Org is the outline dialect: "*" headings and [[target][name]] links.
	Org Dialect = "org"
	// Markdown is the lightweight dialect: "#" headings and [name](target) links.
	Markdown Dialect = "md"
)

// DialectFromExt maps a file extension (with the leading dot) to a dialect.
func DialectFromExt(ext string) (Dialect, bool) {
	switch ext {
	case ".org":
		return Org, true
	case ".md":
		return Markdown, true
	}
	return "", false
}

// String implements fmt.Stringer.
func (d Dialect) String() string { return string(d) }
