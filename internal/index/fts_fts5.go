//go:build sqlite_fts5

package index

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

func initFTS(conn *sqlx.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS links_fts USING fts5(
			path UNINDEXED,
			name,
			target,
			description,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

// ftsUpsert mirrors the document's link rows into links_fts, keyed by link id.
func ftsUpsert(tx *sqlx.Tx, path string) error {
	_, err := tx.Exec(`
		INSERT INTO links_fts (rowid, path, name, target, description)
		SELECT id, path, name, target, COALESCE(description, '')
		FROM links
		WHERE path = ?
	`, path)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sqlx.Tx, path string) error {
	if _, err := tx.Exec(`DELETE FROM links_fts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// ftsQuery turns free text into a conjunction of quoted FTS5 phrases, so
// punctuation such as the dots of a URL never reaches the query parser.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// SearchLinks performs an FTS5 full-text search over links ordered by rank.
func (db *DB) SearchLinks(query string, limit int) ([]LinkHit, error) {
	if limit <= 0 {
		limit = 20
	}
	hits := []LinkHit{}
	err := db.conn.Select(&hits, `
		SELECT l.path, COALESCE(h.title, '') AS heading, l.name, l.target, l.read_till,
		       l.description, l.likeability, l.line_number
		FROM links_fts
		JOIN links l ON l.id = links_fts.rowid
		LEFT JOIN headings h ON h.id = l.heading_id
		WHERE links_fts MATCH ?
		ORDER BY links_fts.rank
		LIMIT ?
	`, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search links: %w", err)
	}
	return hits, nil
}
