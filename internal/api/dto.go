package api

import (
	"github.com/starford/linkorg/internal/index"
	"github.com/starford/linkorg/internal/models"
	"github.com/starford/linkorg/internal/noteservice"
)

// ConfigResponse is the configuration record (aliased from the domain layer).
type ConfigResponse = noteservice.ConfigInfo

// FilesResponse wraps a candidate file listing.
type FilesResponse struct {
	Files []string `json:"files" validate:"required"`
}

// DocumentResponse is a parsed document (aliased from the model layer).
type DocumentResponse = models.Document

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse = noteservice.DocumentList

// SearchResponse wraps link search hits.
type SearchResponse struct {
	Results []index.LinkHit `json:"results" validate:"required"`
}

// IndexResponse is returned after a sync run.
type IndexResponse = index.Report
