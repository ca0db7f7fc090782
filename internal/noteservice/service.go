// Package noteservice answers the host queries: configuration, candidate
// files and parsed documents, plus index-backed search when an index is
// configured.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/linkorg/internal/apperr"
	"github.com/starford/linkorg/internal/index"
	"github.com/starford/linkorg/internal/models"
	"github.com/starford/linkorg/internal/parser"
	"github.com/starford/linkorg/internal/storage"
)

// ConfigInfo is the configuration record handed to hosts.
type ConfigInfo struct {
	NotesDir string `json:"notes_dir"`
}

// DocumentList is one page of indexed documents.
type DocumentList struct {
	Documents []index.DocumentRow `json:"documents"`
	Total     int                 `json:"total"`
}

// Service coordinates storage, parsing and index operations.
// Each call is independent; the service keeps no per-caller state.
type Service struct {
	store   storage.Provider
	db      index.DocumentIndex
	workers int
	logger  *slog.Logger

	onReindex func(*index.Report)
}

// NewService creates a new note service. db may be nil, in which case the
// index-backed operations return apperr.ErrIndexDisabled.
func NewService(store storage.Provider, db index.DocumentIndex, workers int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, db: db, workers: workers, logger: logger}
}

// IndexEnabled reports whether the service has an index behind it.
func (s *Service) IndexEnabled() bool { return s.db != nil }

// Config returns the effective configuration record.
func (s *Service) Config(_ context.Context) (ConfigInfo, error) {
	root, err := s.store.Abs("")
	if err != nil {
		return ConfigInfo{}, err
	}
	return ConfigInfo{NotesDir: root}, nil
}

// ListFiles returns the candidate note paths under dir, relative to the notes root.
func (s *Service) ListFiles(_ context.Context, dir string) ([]string, error) {
	metas, err := s.store.List(dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(metas))
	for i, m := range metas {
		out[i] = m.Path
	}
	return out, nil
}

// ParseFile reads and parses the note at p (relative to the notes root).
func (s *Service) ParseFile(_ context.Context, p string) (*models.Document, error) {
	if strings.TrimSpace(p) == "" {
		return nil, fmt.Errorf("path is required: %w", apperr.ErrInvalidPath)
	}
	d, err := parser.DialectFor(p)
	if err != nil {
		return nil, err
	}
	rc, err := s.store.Open(p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parser.Parse(rc, path.Base(p), d, s.logger)
}

// SearchLinks finds indexed links whose name, target or description match query.
func (s *Service) SearchLinks(_ context.Context, query string, limit int) ([]index.LinkHit, error) {
	if s.db == nil {
		return nil, apperr.ErrIndexDisabled
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required: %w", apperr.ErrInvalidArgument)
	}
	return s.db.SearchLinks(query, limit)
}

// ListDocuments returns one page of indexed documents, optionally filtered by tag.
func (s *Service) ListDocuments(_ context.Context, tag string, limit, offset int) (*DocumentList, error) {
	if s.db == nil {
		return nil, apperr.ErrIndexDisabled
	}
	rows, total, err := s.db.ListDocuments(tag, limit, offset)
	if err != nil {
		return nil, err
	}
	return &DocumentList{Documents: rows, Total: total}, nil
}

// OnReindex registers fn to receive every successful sync report.
// It must be called before the service is shared between goroutines.
func (s *Service) OnReindex(fn func(*index.Report)) {
	s.onReindex = fn
}

// Reindex synchronizes the index with the notes directory.
func (s *Service) Reindex(ctx context.Context) (*index.Report, error) {
	if s.db == nil {
		return nil, apperr.ErrIndexDisabled
	}
	report, err := index.Sync(ctx, s.db, s.store, s.workers, s.logger)
	if err != nil {
		return nil, err
	}
	if s.onReindex != nil {
		s.onReindex(report)
	}
	return report, nil
}

// LastRun returns the most recent sync run, or nil if none was recorded.
func (s *Service) LastRun(_ context.Context) (*index.Run, error) {
	if s.db == nil {
		return nil, apperr.ErrIndexDisabled
	}
	return s.db.LastRun()
}
