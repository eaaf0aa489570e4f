package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/layoutchunker/internal/config"
	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/logger"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

const upsertChunk = `
	INSERT INTO chunks
		(id, chunk_file, file_name, file_uri, processed_datetime, file_class, folder,
		 title, subtitle, section, pages, token_count, content,
		 keyphrases, entities, context, content_vector, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now())
	ON CONFLICT (id) DO UPDATE SET
		chunk_file = EXCLUDED.chunk_file,
		file_name = EXCLUDED.file_name,
		file_uri = EXCLUDED.file_uri,
		processed_datetime = EXCLUDED.processed_datetime,
		file_class = EXCLUDED.file_class,
		folder = EXCLUDED.folder,
		title = EXCLUDED.title,
		subtitle = EXCLUDED.subtitle,
		section = EXCLUDED.section,
		pages = EXCLUDED.pages,
		token_count = EXCLUDED.token_count,
		content = EXCLUDED.content,
		keyphrases = EXCLUDED.keyphrases,
		entities = EXCLUDED.entities,
		context = EXCLUDED.context,
		content_vector = EXCLUDED.content_vector,
		updated_at = now()
`

// SearchIndexClient stores enriched chunks in Postgres with pgvector embeddings.
type SearchIndexClient struct {
	db *sql.DB
}

func NewSearchIndexClient(ctx context.Context, cfg *config.Config) (*SearchIndexClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("search index configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctxPing, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &SearchIndexClient{db: db}, nil
}

func (c *SearchIndexClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Upsert writes each chunk in its own statement so one bad row does not fail the
// rest. The error return is reserved for a cancelled context.
func (c *SearchIndexClient) Upsert(ctx context.Context, docs []models.EnrichedChunk) ([]models.UpsertResult, error) {
	stmt, err := c.db.PrepareContext(ctx, upsertChunk)
	if err != nil {
		return nil, core.Upstream("prepare chunk upsert", err)
	}
	defer stmt.Close()

	results := make([]models.UpsertResult, 0, len(docs))
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("upsert cancelled: %w", err)
		}
		doc := &docs[i]
		res := models.UpsertResult{Key: doc.IndexKey(), ChunkFile: doc.ChunkFile, Succeeded: true}
		if _, err := stmt.ExecContext(ctx, upsertArgs(res.Key, doc)...); err != nil {
			res.Succeeded, res.Err = false, core.Upstream("upsert chunk", err)
			logger.Warn("chunk upsert failed", zap.String("chunk_file", doc.ChunkFile), zap.Error(err))
		}
		results = append(results, res)
	}
	return results, nil
}

// upsertArgs orders the statement arguments. A chunk without an embedding stores NULL.
func upsertArgs(key string, doc *models.EnrichedChunk) []any {
	var vec any
	if len(doc.ContentVector) > 0 {
		vec = pgvector.NewVector(doc.ContentVector)
	}
	var summary any
	if doc.Context != nil {
		summary = *doc.Context
	}
	pages := doc.Pages
	if pages == nil {
		pages = []int{}
	}
	return []any{
		key, doc.ChunkFile, doc.FileName, doc.FileURI, doc.ProcessedDatetime, doc.FileClass, doc.Folder,
		doc.Title, doc.Subtitle, doc.Section, pages, doc.TokenCount, doc.Content,
		doc.Keyphrases, doc.Entities, summary, vec,
	}
}

var _ core.SearchIndex = (*SearchIndexClient)(nil)
