package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/starford/linkorg/internal/models"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path        string    `db:"path" json:"path"`
	FileName    string    `db:"file_name" json:"file_name"`
	Dialect     string    `db:"dialect" json:"dialect"`
	Title       string    `db:"title" json:"file_title"`
	Description string    `db:"description" json:"file_description"`
	Created     string    `db:"created" json:"file_date"`
	TagsJSON    string    `db:"tags" json:"-"`
	Tags        []string  `db:"-" json:"file_tags"`
	Checksum    string    `db:"checksum" json:"checksum"`
	IndexedAt   time.Time `db:"indexed_at" json:"indexed_at"`
}

// NewDocumentRow builds the documents row for a parsed document stored at path.
func NewDocumentRow(path string, d models.Dialect, checksum string, doc *models.Document) DocumentRow {
	return DocumentRow{
		Path:        path,
		FileName:    doc.FileName,
		Dialect:     string(d),
		Title:       doc.Metadata.Title,
		Description: doc.Metadata.Description,
		Created:     doc.Metadata.Date,
		Tags:        doc.Metadata.Tags,
		Checksum:    checksum,
		IndexedAt:   time.Now().UTC(),
	}
}

// LinkHit is one link returned by SearchLinks.
type LinkHit struct {
	Path        string  `db:"path" json:"path"`
	Heading     string  `db:"heading" json:"heading"`
	Name        string  `db:"name" json:"name"`
	Target      string  `db:"target" json:"link"`
	ReadTill    string  `db:"read_till" json:"read_till"`
	Description *string `db:"description" json:"description"`
	Likeability *string `db:"likeability" json:"likeability"`
	LineNumber  int     `db:"line_number" json:"line_number"`
}

// Run records one completed sync.
type Run struct {
	ID         string    `db:"id" json:"id"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
	Scanned    int       `db:"scanned" json:"scanned"`
	Indexed    int       `db:"indexed" json:"indexed"`
	Removed    int       `db:"removed" json:"removed"`
	Failed     int       `db:"failed" json:"failed"`
}

const documentColumns = `path, file_name, dialect, title, description, created, tags, checksum, indexed_at`

// UpsertDocument replaces a document row together with its headings, links
// and FTS entries within a transaction.
func (db *DB) UpsertDocument(row DocumentRow, doc *models.Document) error {
	tags := row.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("index: encode tags: %w", err)
	}
	row.TagsJSON = string(tagsJSON)
	if row.IndexedAt.IsZero() {
		row.IndexedAt = time.Now().UTC()
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.NamedExec(`
		INSERT INTO documents (`+documentColumns+`)
		VALUES (:path, :file_name, :dialect, :title, :description, :created, :tags, :checksum, :indexed_at)
		ON CONFLICT(path) DO UPDATE SET
			file_name   = excluded.file_name,
			dialect     = excluded.dialect,
			title       = excluded.title,
			description = excluded.description,
			created     = excluded.created,
			tags        = excluded.tags,
			checksum    = excluded.checksum,
			indexed_at  = excluded.indexed_at
	`, row)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	if err := clearTree(tx, row.Path); err != nil {
		return err
	}
	if doc != nil {
		if err := insertLinks(tx, row.Path, nil, doc.Links); err != nil {
			return err
		}
		if err := insertHeadings(tx, row.Path, nil, doc.Headings); err != nil {
			return err
		}
	}

	// FTS refresh (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Path); err != nil {
		return err
	}
	return tx.Commit()
}

func clearTree(tx *sqlx.Tx, path string) error {
	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM links WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: clear links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM headings WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: clear headings: %w", err)
	}
	return nil
}

func insertHeadings(tx *sqlx.Tx, path string, parent *int64, headings []*models.Heading) error {
	for i, h := range headings {
		res, err := tx.Exec(`
			INSERT INTO headings (path, parent_id, level, title, line_number, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, path, parent, h.Level, h.Title, h.LineNumber, i)
		if err != nil {
			return fmt.Errorf("index: insert heading: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("index: heading id: %w", err)
		}
		if err := insertLinks(tx, path, &id, h.Links); err != nil {
			return err
		}
		if err := insertHeadings(tx, path, &id, h.Children); err != nil {
			return err
		}
	}
	return nil
}

func insertLinks(tx *sqlx.Tx, path string, heading *int64, links []models.Link) error {
	if len(links) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT INTO links (path, heading_id, name, target, read_till, description, likeability, line_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare link insert: %w", err)
	}
	defer stmt.Close()
	for _, l := range links {
		if _, err := stmt.Exec(path, heading, l.Name, l.Target, l.ReadTill, l.Description, l.Likeability, l.LineNumber); err != nil {
			return fmt.Errorf("index: insert link: %w", err)
		}
	}
	return nil
}

// DeleteDocument removes a document, its headings, links and FTS entries.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := clearTree(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.Get(&cs, `SELECT checksum FROM documents WHERE path = ?`, path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	var rows []struct {
		Path     string `db:"path"`
		Checksum string `db:"checksum"`
	}
	if err := db.conn.Select(&rows, `SELECT path, checksum FROM documents`); err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Path] = r.Checksum
	}
	return out, nil
}

// ListDocuments returns indexed documents ordered by path, optionally
// restricted to those carrying tag, along with the total match count.
func (db *DB) ListDocuments(tag string, limit, offset int) ([]DocumentRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	var args []any
	if tag != "" {
		where = `WHERE EXISTS (SELECT 1 FROM json_each(documents.tags) WHERE json_each.value = ?)`
		args = append(args, tag)
	}

	var total int
	if err := db.conn.Get(&total, `SELECT count(*) FROM documents `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	rows := []DocumentRow{}
	q := `SELECT ` + documentColumns + ` FROM documents ` + where + ` ORDER BY path LIMIT ? OFFSET ?`
	if err := db.conn.Select(&rows, q, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	for i := range rows {
		rows[i].Tags = []string{}
		if err := json.Unmarshal([]byte(rows[i].TagsJSON), &rows[i].Tags); err != nil {
			return nil, 0, fmt.Errorf("index: decode tags for %s: %w", rows[i].Path, err)
		}
	}
	return rows, total, nil
}

// RecordRun stores a completed sync run.
func (db *DB) RecordRun(r Run) error {
	_, err := db.conn.NamedExec(`
		INSERT INTO sync_runs (id, started_at, finished_at, scanned, indexed, removed, failed)
		VALUES (:id, :started_at, :finished_at, :scanned, :indexed, :removed, :failed)
	`, r)
	if err != nil {
		return fmt.Errorf("index: record run: %w", err)
	}
	return nil
}

// LastRun returns the most recent sync run, or nil if the index was never synced.
func (db *DB) LastRun() (*Run, error) {
	var r Run
	err := db.conn.Get(&r, `
		SELECT id, started_at, finished_at, scanned, indexed, removed, failed
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: last run: %w", err)
	}
	return &r, nil
}
