package ingestion_engine

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/core/chunking"
	"github.com/markdave123-py/layoutchunker/internal/core/structure"
	"github.com/markdave123-py/layoutchunker/internal/logger"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

const (
	defaultQueueSize  = 64
	defaultJobTimeout = 10 * time.Minute
)

// NewDocumentIngestor constructs the ingestor with a bounded job queue.
func NewDocumentIngestor(
	blobs core.BlobStore,
	analyzer core.DocumentAnalyzer,
	builder *structure.Builder,
	planner *chunking.Planner,
	enricher Enricher,
	index core.SearchIndex,
	cfg *IngestConfig,
) *DocumentIngestor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	return &DocumentIngestor{
		blobs: blobs, analyzer: analyzer, builder: builder, planner: planner,
		enricher: enricher, index: index, cfg: cfg,
		jobs:  make(chan string, cfg.QueueSize),
		store: newJobStore(),
	}
}

// Start runs numWorkers goroutines reading from the jobs channel until ctx is done.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		i.wg.Add(1)
		go func(w int) {
			defer i.wg.Done()
			for {
				select {
				case <-ctx.Done():
					logger.Info("ingestion worker shutting down", zap.Int("worker", w))
					return
				case id := <-i.jobs:
					i.runJob(ctx, w, id)
				}
			}
		}(w)
	}
}

// Wait blocks until every worker started by Start has returned.
func (i *DocumentIngestor) Wait() {
	i.wg.Wait()
}

// Enqueue validates blob, records a queued job and schedules it. If the queue is full
// the call blocks until space frees up or ctx is done.
func (i *DocumentIngestor) Enqueue(ctx context.Context, blob, submittedBy string) (Job, error) {
	if _, _, err := i.sourceFor(blob); err != nil {
		return Job{}, err
	}
	job := i.store.create(blob, submittedBy)

	select {
	case i.jobs <- job.ID:
		return job, nil
	case <-ctx.Done():
		i.store.update(job.ID, func(j *Job) {
			j.Status, j.Error = JobFailed, "not queued: "+ctx.Err().Error()
		})
		return Job{}, fmt.Errorf("enqueue %s: %w", blob, ctx.Err())
	}
}

// Job returns a snapshot of the job with the given ID.
func (i *DocumentIngestor) Job(id string) (Job, bool) {
	return i.store.get(id)
}

func (i *DocumentIngestor) runJob(ctx context.Context, worker int, id string) {
	job, ok := i.store.get(id)
	if !ok {
		return
	}
	i.store.update(id, func(j *Job) { j.Status = JobProcessing })
	logger.Info("processing document", zap.String("job_id", id), zap.String("blob", job.Blob), zap.Int("worker", worker))

	jobCtx, cancel := context.WithTimeout(ctx, i.cfg.JobTimeout)
	defer cancel()

	res, err := i.ProcessOne(jobCtx, job.Blob)
	if err != nil {
		logger.Error("document failed", zap.String("job_id", id), zap.String("blob", job.Blob), zap.Error(err))
		i.store.update(id, func(j *Job) { j.Status, j.Error = JobFailed, err.Error() })
		return
	}
	logger.Info("document ready", zap.String("job_id", id), zap.String("blob", job.Blob), zap.Int("chunks", len(res.ChunkFiles)))
	i.store.update(id, func(j *Job) { j.Status, j.Chunks = JobReady, len(res.ChunkFiles) })
}

// ProcessOne analyzes, structures, chunks, enriches and indexes a single blob, then
// archives it to the processed folder. On any error the blob stays where it was.
func (i *DocumentIngestor) ProcessOne(ctx context.Context, blob string) (*Result, error) {
	src, rel, err := i.sourceFor(blob)
	if err != nil {
		return nil, err
	}
	key := path.Join(i.cfg.UnprocessedFolder, rel)

	records, err := i.extractStructure(ctx, key)
	if err != nil {
		return nil, err
	}

	// Plan and persist chunk files as two stages; any error cancels the other.
	g, gctx := errgroup.WithContext(ctx)
	chunkCh := i.streamChunks(gctx, g, records, src)

	var chunks []models.Chunk
	g.Go(func() error {
		var err error
		chunks, err = i.persistChunks(gctx, chunkCh)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	enriched, err := i.enricher.EnrichAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	if err := i.upsert(ctx, enriched); err != nil {
		return nil, err
	}

	processed := path.Join(i.cfg.ProcessedFolder, rel)
	if err := i.blobs.Move(ctx, key, processed); err != nil {
		return nil, err
	}

	files := make([]string, len(chunks))
	for k, c := range chunks {
		files[k] = c.ChunkFile
	}
	return &Result{Blob: key, ProcessedBlob: processed, ChunkFiles: files}, nil
}

func (i *DocumentIngestor) upsert(ctx context.Context, docs []models.EnrichedChunk) error {
	results, err := i.index.Upsert(ctx, docs)
	if err != nil {
		return core.Upstream("index upsert", err)
	}
	failed := 0
	for _, r := range results {
		if !r.Succeeded {
			failed++
			logger.Warn("chunk not indexed", zap.String("chunk_file", r.ChunkFile), zap.String("key", r.Key), zap.Error(r.Err))
		}
	}
	if failed > 0 {
		return core.Upstream("index upsert", fmt.Errorf("%d of %d chunks failed", failed, len(docs)))
	}
	return nil
}
