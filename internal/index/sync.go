package index

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/linkorg/internal/apperr"
	"github.com/starford/linkorg/internal/checksum"
	"github.com/starford/linkorg/internal/models"
	"github.com/starford/linkorg/internal/parser"
	"github.com/starford/linkorg/internal/storage"
)

// Failure describes one file that could not be indexed.
type Failure struct {
	Path    string `json:"path"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

// Report summarizes a Sync run.
type Report struct {
	RunID     string    `json:"run_id"`
	Scanned   int       `json:"scanned"`
	Indexed   int       `json:"indexed"`
	Unchanged int       `json:"unchanged"`
	Removed   int       `json:"removed"`
	Failures  []Failure `json:"failures"`

	IndexedPaths []string `json:"indexed_paths"`
	RemovedPaths []string `json:"removed_paths"`
}

type parsed struct {
	meta      models.FileMeta
	checksum  string
	unchanged bool
	doc       *models.Document
	err       error
}

// Sync brings the index up to date with the notes directory:
//   - every file is read and fingerprinted concurrently (at most workers at a time)
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
//
// A file that fails to open, read or parse is recorded in the report and
// never aborts the batch. Only listing errors, index errors and context
// cancellation are returned.
func Sync(ctx context.Context, db DocumentIndex, store storage.Provider, workers int, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if workers < 1 {
		workers = 1
	}
	started := time.Now().UTC()

	metas, err := store.List("")
	if err != nil {
		return nil, err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:        uuid.NewString(),
		Scanned:      len(metas),
		Failures:     []Failure{},
		IndexedPaths: []string{},
		RemovedPaths: []string{},
	}
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
	}

	results := make([]parsed, len(metas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range metas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = readOne(store, m, checksums[m.Path], logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		switch {
		case r.err != nil:
			logger.Warn("sync: file failed", slog.String("path", r.meta.Path), slog.String("error", r.err.Error()))
			report.Failures = append(report.Failures, Failure{Path: r.meta.Path, Message: r.err.Error(), Err: r.err})
			continue
		case r.unchanged:
			report.Unchanged++
			continue
		}
		row := NewDocumentRow(r.meta.Path, r.meta.Dialect, r.checksum, r.doc)
		if err := db.UpsertDocument(row, r.doc); err != nil {
			return nil, err
		}
		report.Indexed++
		report.IndexedPaths = append(report.IndexedPaths, r.meta.Path)
		logger.Debug("sync: indexed", slog.String("path", r.meta.Path))
	}

	// Remove stale entries.
	for _, p := range slices.Sorted(maps.Keys(checksums)) {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteDocument(p); err != nil {
			return nil, err
		}
		report.Removed++
		report.RemovedPaths = append(report.RemovedPaths, p)
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	err = db.RecordRun(Run{
		ID:         report.RunID,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Scanned:    report.Scanned,
		Indexed:    report.Indexed,
		Removed:    report.Removed,
		Failed:     len(report.Failures),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("sync: done",
		slog.String("run_id", report.RunID),
		slog.Int("scanned", report.Scanned),
		slog.Int("indexed", report.Indexed),
		slog.Int("removed", report.Removed),
		slog.Int("failed", len(report.Failures)),
	)
	return report, nil
}

// readOne reads m once, fingerprints it, and parses it unless the
// fingerprint equals known.
func readOne(store storage.Provider, m models.FileMeta, known string, logger *slog.Logger) parsed {
	res := parsed{meta: m}
	rc, err := store.Open(m.Path)
	if err != nil {
		res.err = err
		return res
	}
	defer rc.Close()

	var buf bytes.Buffer
	res.checksum, err = checksum.Reader(io.TeeReader(rc, &buf))
	if err != nil {
		res.err = fmt.Errorf("read %s: %w %w", m.Path, apperr.ErrUnreadable, err)
		return res
	}
	if res.checksum == known {
		res.unchanged = true
		return res
	}
	res.doc, err = parser.Parse(&buf, path.Base(m.Path), m.Dialect, logger)
	if err != nil {
		res.err = fmt.Errorf("parse %s: %w", m.Path, err)
	}
	return res
}
