package mcpserver

// NoteFormat describes the line grammar recognized in .org and .md notes.
const NoteFormat = `# linkorg Note Format

A note is read one line at a time. Each line is a link, a heading, a
metadata directive, or ignored. Links take precedence over headings, and
headings over metadata.

## Links

Org:      ` + "`" + `[[TARGET][NAME]] (DESCRIPTION) (LIKEABILITY) -- after TOKEN` + "`" + `
Markdown: ` + "`" + `[NAME](TARGET) (DESCRIPTION) (LIKEABILITY) -- after TOKEN` + "`" + `

- The ` + "`" + `-- after` + "`" + ` marker is required; TOKEN (page, chapter, "3.2") may be empty.
- Both parentheticals are optional. A single parenthetical containing the
  word "read" is the likeability, otherwise it is the description.
- Lines may be table rows: leading, separating and trailing ` + "`" + `|` + "`" + ` are allowed.

## Headings

Org: one or more ` + "`" + `*` + "`" + ` then a space. Markdown: one or more ` + "`" + `#` + "`" + ` then a space.
The title must start with a letter or digit, in any script.
The marker count is the level. A link belongs to the most recent heading,
or to the document root before the first heading.

## Metadata

| Field       | Org                           | Markdown                  |
|-------------|-------------------------------|---------------------------|
| title       | ` + "`" + `#+TITLE: text` + "`" + `               | ` + "`" + `title: text` + "`" + `             |
| description | ` + "`" + `#+DESCRIPTION: text` + "`" + `         | ` + "`" + `description: text` + "`" + `       |
| date        | ` + "`" + `#+DATE: [2024-01-31 Wed]` + "`" + `    | ` + "`" + `date: [2024-01-31]` + "`" + `      |
| tags        | ` + "`" + `#+FILETAGS: :a:b:` + "`" + `           | ` + "`" + `filetags: :a:b:` + "`" + `         |

Keywords are case-insensitive. When a directive repeats, the last one wins.

## Example

` + "```" + `org
#+TITLE: Reading list
#+FILETAGS: :books:go:
* Articles
[[https://go.dev/doc/effective_go][Effective Go]] (style guide) -- after 12
** Papers
| [[https://raft.github.io][Raft]] | (must read) | -- after 3 |
` + "```" + `
`
