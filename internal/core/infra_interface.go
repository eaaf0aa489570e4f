package core

import (
	"context"

	"github.com/markdave123-py/layoutchunker/internal/models"
)

// BlobStore defines the object storage operations the pipeline needs.
// Paths are bucket-relative keys such as "unprocessed/report.pdf".
type BlobStore interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Move(ctx context.Context, from, to string) error
	Exists(ctx context.Context, path string) (bool, error)
	URI(path string) string
}

// SearchIndex receives enriched chunks. The returned slice has one entry per input chunk,
// in input order; err is reserved for failures that affect the whole batch.
type SearchIndex interface {
	Upsert(ctx context.Context, docs []models.EnrichedChunk) ([]models.UpsertResult, error)
	Close() error
}
