package ingestion_engine

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/layoutchunker/internal/models"
)

// streamChunks runs the planner in the group and hands each chunk downstream as soon
// as it is complete. The channel is closed when planning ends.
func (i *DocumentIngestor) streamChunks(
	ctx context.Context,
	g *errgroup.Group,
	records []models.StructureRecord,
	src models.SourceDocument,
) <-chan models.Chunk {
	out := make(chan models.Chunk, 8)

	g.Go(func() error {
		defer close(out)
		return i.planner.PlanFunc(records, src, func(c models.Chunk) error {
			select {
			case out <- c:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	return out
}

// persistChunks writes every chunk as JSON under the chunks folder and returns them
// in emission order.
func (i *DocumentIngestor) persistChunks(ctx context.Context, in <-chan models.Chunk) ([]models.Chunk, error) {
	var chunks []models.Chunk
	for c := range in {
		data, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode chunk %s: %w", c.ChunkFile, err)
		}
		if err := i.blobs.Put(ctx, i.chunkKey(c), data, "application/json"); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// chunkKey places a chunk under a directory named after its source file, so sources
// that share a base name keep separate chunk files.
func (i *DocumentIngestor) chunkKey(c models.Chunk) string {
	return path.Join(i.cfg.ChunksFolder, c.SourcePath(), c.ChunkFile)
}
