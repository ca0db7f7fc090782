//go:build !sqlite_fts5

package index

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

func initFTS(_ *sqlx.DB) error {
	// FTS5 not available; link search uses LIKE over the links table.
	return nil
}

func ftsUpsert(_ *sqlx.Tx, _ string) error { return nil }

func ftsDelete(_ *sqlx.Tx, _ string) error { return nil }

// SearchLinks performs a LIKE-based search over link names, targets and
// descriptions (fallback when FTS5 is not compiled in).
func (db *DB) SearchLinks(query string, limit int) ([]LinkHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	hits := []LinkHit{}
	err := db.conn.Select(&hits, `
		SELECT l.path, COALESCE(h.title, '') AS heading, l.name, l.target, l.read_till,
		       l.description, l.likeability, l.line_number
		FROM links l
		LEFT JOIN headings h ON h.id = l.heading_id
		WHERE l.name LIKE ? OR l.target LIKE ? OR l.description LIKE ?
		ORDER BY l.path, l.line_number
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search links: %w", err)
	}
	return hits, nil
}
