// Package index provides a SQLite-backed index of parsed note documents with
// optional FTS5 search over links.
package index

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/linkorg/internal/models"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path        TEXT PRIMARY KEY,
	file_name   TEXT NOT NULL DEFAULT '',
	dialect     TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created     TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '[]',
	checksum    TEXT NOT NULL DEFAULT '',
	indexed_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS headings (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	path        TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
	parent_id   INTEGER REFERENCES headings(id) ON DELETE CASCADE,
	level       INTEGER NOT NULL,
	title       TEXT NOT NULL,
	line_number INTEGER NOT NULL,
	position    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS links (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	path        TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
	heading_id  INTEGER REFERENCES headings(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	target      TEXT NOT NULL,
	read_till   TEXT NOT NULL DEFAULT '',
	description TEXT,
	likeability TEXT,
	line_number INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id          TEXT PRIMARY KEY,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	scanned     INTEGER NOT NULL DEFAULT 0,
	indexed     INTEGER NOT NULL DEFAULT 0,
	removed     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_headings_path ON headings(path);
CREATE INDEX IF NOT EXISTS idx_links_path ON links(path);
CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);
`

// DB wraps a sqlx.DB with index-specific operations.
type DB struct {
	conn *sqlx.DB
}

// DocumentIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type DocumentIndex interface {
	UpsertDocument(row DocumentRow, doc *models.Document) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListDocuments(tag string, limit, offset int) ([]DocumentRow, int, error)
	SearchLinks(query string, limit int) ([]LinkHit, error)
	RecordRun(r Run) error
	LastRun() (*Run, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sqlx.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	// A single connection keeps foreign_keys and WAL settings consistent.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
