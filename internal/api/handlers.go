package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/linkorg/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *noteservice.Service
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// documentPath extracts the file path from the URL (everything after /api/documents/).
// Supports encoded slashes (e.g. reading%2Fbooks.org).
func documentPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetConfig handles GET /api/config.
//
//	@Summary		Get the effective configuration record
//	@Tags			config
//	@Produce		json
//	@Success		200	{object}	ConfigResponse
//	@Security		BearerAuth
//	@Router			/config [get]
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Config(r.Context())
	if err != nil {
		writeError(w, h.logger, "get config", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// ListFiles handles GET /api/files.
//
//	@Summary		List candidate note files under a directory
//	@Tags			files
//	@Produce		json
//	@Param			dir	query		string	false	"Directory relative to the notes root"
//	@Success		200	{object}	FilesResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.ListFiles(r.Context(), r.URL.Query().Get("dir"))
	if err != nil {
		writeError(w, h.logger, "list files", err)
		return
	}
	writeJSON(w, http.StatusOK, FilesResponse{Files: files})
}

// ParseDocument handles GET /api/documents/*.
//
//	@Summary		Parse a single note file
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"File path"
//	@Success		200		{object}	DocumentResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [get]
func (h *Handler) ParseDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.ParseFile(r.Context(), path)
	if err != nil {
		writeError(w, h.logger.With(slog.String("path", path)), "parse document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List indexed documents with optional pagination and tag filter
//	@Tags			documents
//	@Produce		json
//	@Param			tag		query		string	false	"Filter by tag"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	DocumentListResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	list, err := h.svc.ListDocuments(r.Context(), q.Get("tag"), limit, offset)
	if err != nil {
		writeError(w, h.logger, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// SearchLinks handles GET /api/search.
//
//	@Summary		Search indexed links
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) SearchLinks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.SearchLinks(r.Context(), q, limit)
	if err != nil {
		writeError(w, h.logger.With(slog.String("query", q)), "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}

// Reindex handles POST /api/index.
//
//	@Summary		Synchronize the index with the notes directory
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	IndexResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/index [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Reindex(r.Context())
	if err != nil {
		writeError(w, h.logger, "reindex", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
