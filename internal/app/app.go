package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/layoutchunker/internal/api/handlers"
	"github.com/markdave123-py/layoutchunker/internal/config"
	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/core/analysis"
	"github.com/markdave123-py/layoutchunker/internal/core/chunking"
	db "github.com/markdave123-py/layoutchunker/internal/core/database"
	"github.com/markdave123-py/layoutchunker/internal/core/enrichment"
	"github.com/markdave123-py/layoutchunker/internal/core/ingestion_engine"
	"github.com/markdave123-py/layoutchunker/internal/core/llm"
	"github.com/markdave123-py/layoutchunker/internal/core/memindex"
	objectclient "github.com/markdave123-py/layoutchunker/internal/core/object-client"
	"github.com/markdave123-py/layoutchunker/internal/core/structure"
	"github.com/markdave123-py/layoutchunker/internal/logger"
	"github.com/markdave123-py/layoutchunker/internal/services"
)

type App struct {
	Blobs    core.BlobStore
	Index    core.SearchIndex
	Ingestor *ingestion_engine.DocumentIngestor
	Server   *Server

	closers []io.Closer
}

// aiClients are the completion and embedding providers for one LLM backend.
type aiClients struct {
	completer core.CompletionProvider
	embedder  core.EmbeddingProvider
	closers   []io.Closer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{}

	blobs, err := newBlobStore(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.Blobs = blobs
	logger.Info("blob store ready", zap.String("backend", cfg.BlobBackend))

	ai, err := newAIClients(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, ai.closers...)
	logger.Info("llm provider ready", zap.String("provider", cfg.LLMProvider))

	index, err := newSearchIndex(appCtx, cfg, ai.embedder)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Index = index
	a.closers = append(a.closers, index)
	logger.Info("search index ready", zap.String("backend", cfg.IndexBackend))

	coordinator, err := enrichment.NewCoordinator(
		enrichment.NewLLMKeyPhraseExtractor(ai.completer, 0),
		enrichment.NewLLMEntityExtractor(ai.completer, 0),
		ai.completer,
		ai.embedder,
		cfg.EnrichConcurrency,
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	planner, err := chunking.NewPlanner(chunking.Options{
		TargetTokens:      cfg.ChunkTargetTokens,
		UnprocessedFolder: cfg.UnprocessedFolder,
		ProcessedFolder:   cfg.ProcessedFolder,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	spanMode := structure.BoundingSpans
	if cfg.TableSpanMode == config.TableSpanLiteral {
		spanMode = structure.LiteralSpans
	}

	a.Ingestor = ingestion_engine.NewDocumentIngestor(
		blobs,
		analysis.NewDispatcher(),
		structure.NewBuilder(structure.Options{TableSpanMode: spanMode}),
		planner,
		coordinator,
		index,
		&ingestion_engine.IngestConfig{
			UnprocessedFolder: cfg.UnprocessedFolder,
			ProcessedFolder:   cfg.ProcessedFolder,
			ChunksFolder:      cfg.ChunksFolder,
			QueueSize:         cfg.QueueSize,
		},
	)

	docService := services.NewDocumentService(blobs, a.Ingestor, cfg.UnprocessedFolder)
	a.Server = NewServer(cfg, handlers.NewDocumentHandler(docService))

	return a, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (core.BlobStore, error) {
	if cfg.BlobBackend == config.BlobBackendMemory {
		return objectclient.NewMemoryStore(cfg.BucketName), nil
	}
	s3, err := objectclient.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the blob store: %w", err)
	}
	return s3, nil
}

func newAIClients(ctx context.Context, cfg *config.Config) (*aiClients, error) {
	if cfg.LLMProvider == config.LLMProviderOllama {
		o, err := llm.NewOllama(cfg.OllamaHost, cfg.OllamaChatModel, cfg.OllamaEmbedModel)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize ollama: %w", err)
		}
		return &aiClients{completer: o, embedder: o}, nil
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}
	gen, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("couldn't initialize the llm provider: %w", err)
	}
	return &aiClients{completer: gen, embedder: embedder, closers: []io.Closer{embedder, gen}}, nil
}

func newSearchIndex(ctx context.Context, cfg *config.Config, embedder core.EmbeddingProvider) (core.SearchIndex, error) {
	if cfg.IndexBackend == config.IndexBackendMemory {
		ix, err := memindex.New(embedder)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the memory index: %w", err)
		}
		return ix, nil
	}
	client, err := db.NewSearchIndexClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the search index: %w", err)
	}
	return client, nil
}

// Close releases every client opened by NewApp, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
