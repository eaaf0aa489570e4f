package ingestion_engine

import (
	"context"
	"sync"
	"time"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/core/chunking"
	"github.com/markdave123-py/layoutchunker/internal/core/structure"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

// IngestConfig tunes the document pipeline.
//
// UnprocessedFolder: blob folder documents are submitted from.
// ProcessedFolder:   blob folder a source is moved to once indexed.
// ChunksFolder:      blob folder the planned chunk JSON is written to.
// QueueSize:         capacity of the in-memory job queue.
// JobTimeout:        upper bound for one document, from fetch to archive.
type IngestConfig struct {
	UnprocessedFolder string
	ProcessedFolder   string
	ChunksFolder      string
	QueueSize         int
	JobTimeout        time.Duration
}

// Enricher decorates planned chunks; enrichment.Coordinator is the production one.
type Enricher interface {
	EnrichAll(ctx context.Context, chunks []models.Chunk) ([]models.EnrichedChunk, error)
}

// DocumentIngestor orchestrates the background pipeline:
//
// blobs:    source, chunk and archive storage.
// analyzer: blob bytes to layout-analysis output.
// builder:  layout output to structure records.
// planner:  structure records to chunks.
// enricher: chunks to enriched chunks.
// index:    destination for enriched chunks.
// jobs:     in-memory queue of job IDs.
type DocumentIngestor struct {
	blobs    core.BlobStore
	analyzer core.DocumentAnalyzer
	builder  *structure.Builder
	planner  *chunking.Planner
	enricher Enricher
	index    core.SearchIndex
	cfg      *IngestConfig

	jobs  chan string
	store *jobStore
	wg    sync.WaitGroup
}

// Result summarises one processed document.
type Result struct {
	Blob          string
	ProcessedBlob string
	ChunkFiles    []string
}
