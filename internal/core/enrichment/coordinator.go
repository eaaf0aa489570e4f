// Package enrichment decorates planned chunks with key phrases, entities, a context
// summary and an embedding. The four calls for a chunk run concurrently and fail
// independently; a failed call is logged and replaced by its default.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/logger"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

const (
	opKeyPhrases = "keyphrases"
	opEntities   = "entities"
	opContext    = "context"
	opEmbedding  = "embedding"
)

const contextSystemPrompt = "You situate a passage within the document it was taken from. " +
	"Reply with one or two sentences describing what the passage covers and how it relates to the document. " +
	"Do not add facts that are not in the passage."

type Coordinator struct {
	keyphrases  core.KeyPhraseExtractor
	entities    core.EntityExtractor
	completer   core.CompletionProvider
	embedder    core.EmbeddingProvider
	concurrency int
}

// NewCoordinator wires the four extraction collaborators. concurrency bounds how many
// chunks are enriched at once; values below one mean no bound.
func NewCoordinator(kp core.KeyPhraseExtractor, ent core.EntityExtractor, comp core.CompletionProvider, emb core.EmbeddingProvider, concurrency int) (*Coordinator, error) {
	if kp == nil || ent == nil || comp == nil || emb == nil {
		return nil, errors.New("enrichment: all four collaborators are required")
	}
	if concurrency < 1 {
		concurrency = -1
	}
	return &Coordinator{keyphrases: kp, entities: ent, completer: comp, embedder: emb, concurrency: concurrency}, nil
}

// EnrichAll enriches every chunk, preserving order. It fails only for an invalid chunk
// list or when ctx is cancelled; individual extraction failures never surface here.
func (c *Coordinator) EnrichAll(ctx context.Context, chunks []models.Chunk) ([]models.EnrichedChunk, error) {
	if len(chunks) == 0 {
		return nil, core.Validationf("no chunks to enrich")
	}
	for i, ch := range chunks {
		if ch.ChunkFile == "" {
			return nil, core.Validationf("chunk %d has no chunk_file", i)
		}
		if strings.TrimSpace(ch.Content) == "" {
			return nil, core.Validationf("chunk %s has empty content", ch.ChunkFile)
		}
	}

	out := make([]models.EnrichedChunk, len(chunks))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i := range chunks {
		g.Go(func() error {
			out[i] = c.Enrich(ctx, chunks[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("enrichment cancelled: %w", err)
	}
	return out, nil
}

// Enrich runs the four extraction calls for one chunk and merges their results once all
// have returned.
func (c *Coordinator) Enrich(ctx context.Context, ch models.Chunk) models.EnrichedChunk {
	text := CleanText(ch.Content)

	var (
		keyphrases []string
		entities   []string
		summary    *string
		vector     []float32
		g          errgroup.Group
	)

	g.Go(func() error {
		v, err := c.keyphrases.ExtractKeyPhrases(ctx, text)
		if err != nil {
			logFailure(ch, opKeyPhrases, err)
			return nil
		}
		keyphrases = v
		return nil
	})
	g.Go(func() error {
		v, err := c.entities.ExtractEntities(ctx, text)
		if err != nil {
			logFailure(ch, opEntities, err)
			return nil
		}
		entities = v
		return nil
	})
	g.Go(func() error {
		v, err := c.completer.Complete(ctx, contextMessages(ch, text))
		if err != nil {
			logFailure(ch, opContext, err)
			return nil
		}
		v = strings.TrimSpace(v)
		summary = &v
		return nil
	})
	g.Go(func() error {
		v, err := c.embedder.Embed(ctx, text)
		if err != nil {
			logFailure(ch, opEmbedding, err)
			return nil
		}
		vector = v
		return nil
	})
	_ = g.Wait()

	if keyphrases == nil {
		keyphrases = []string{}
	}
	if entities == nil {
		entities = []string{}
	}
	if vector == nil {
		vector = []float32{}
	}
	return models.EnrichedChunk{
		Chunk:         ch,
		Keyphrases:    keyphrases,
		Entities:      entities,
		ContentVector: vector,
		Context:       summary,
	}
}

func contextMessages(ch models.Chunk, text string) []core.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", ch.FileName)
	if ch.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", ch.Title)
	}
	if ch.Section != "" {
		fmt.Fprintf(&b, "Section: %s\n", ch.Section)
	}
	fmt.Fprintf(&b, "\nPassage:\n%s", text)

	return []core.Message{
		{Role: core.RoleSystem, Content: contextSystemPrompt},
		{Role: core.RoleUser, Content: b.String()},
	}
}

func logFailure(ch models.Chunk, op string, err error) {
	logger.Warn("enrichment call failed, using default",
		zap.String("chunk_file", ch.ChunkFile),
		zap.String("op", op),
		zap.Error(core.Extraction(op, err)),
	)
}
