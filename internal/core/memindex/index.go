// Package memindex is an in-process search index backed by chromem-go.
package memindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

const collectionName = "chunks"

// Index keeps enriched chunks in a chromem collection. Chunks whose embedding call
// failed are embedded with the fallback provider when one is configured.
type Index struct {
	db   *chromem.DB
	coll *chromem.Collection
}

func New(fallback core.EmbeddingProvider) (*Index, error) {
	embed := func(ctx context.Context, text string) ([]float32, error) {
		if fallback == nil {
			return nil, errors.New("chunk has no content vector")
		}
		return fallback.Embed(ctx, text)
	}

	db := chromem.NewDB()
	coll, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{db: db, coll: coll}, nil
}

func (ix *Index) Upsert(ctx context.Context, docs []models.EnrichedChunk) ([]models.UpsertResult, error) {
	results := make([]models.UpsertResult, 0, len(docs))
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("upsert cancelled: %w", err)
		}
		doc := &docs[i]
		res := models.UpsertResult{Key: doc.IndexKey(), ChunkFile: doc.ChunkFile, Succeeded: true}
		err := ix.coll.AddDocument(ctx, chromem.Document{
			ID:        res.Key,
			Metadata:  metadata(doc),
			Embedding: doc.ContentVector,
			Content:   doc.Content,
		})
		if err != nil {
			res.Succeeded, res.Err = false, core.Upstream("memindex add", err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Count reports how many chunks are stored.
func (ix *Index) Count() int {
	return ix.coll.Count()
}

// Hit is one similarity search result.
type Hit struct {
	Key        string
	ChunkFile  string
	Content    string
	Similarity float32
}

// Search returns up to limit chunks nearest to vector, best first.
func (ix *Index) Search(ctx context.Context, vector []float32, limit int) ([]Hit, error) {
	if n := ix.coll.Count(); limit > n {
		limit = n
	}
	if limit <= 0 {
		return nil, nil
	}
	res, err := ix.coll.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	hits := make([]Hit, 0, len(res))
	for _, r := range res {
		hits = append(hits, Hit{Key: r.ID, ChunkFile: r.Metadata["chunk_file"], Content: r.Content, Similarity: r.Similarity})
	}
	return hits, nil
}

func (ix *Index) Close() error { return nil }

func metadata(doc *models.EnrichedChunk) map[string]string {
	pages := make([]string, len(doc.Pages))
	for i, p := range doc.Pages {
		pages[i] = strconv.Itoa(p)
	}
	m := map[string]string{
		"chunk_file":         doc.ChunkFile,
		"file_name":          doc.FileName,
		"file_uri":           doc.FileURI,
		"processed_datetime": doc.ProcessedDatetime,
		"file_class":         doc.FileClass,
		"folder":             doc.Folder,
		"title":              doc.Title,
		"subtitle":           doc.Subtitle,
		"section":            doc.Section,
		"pages":              strings.Join(pages, ","),
		"token_count":        strconv.Itoa(doc.TokenCount),
		"keyphrases":         strings.Join(doc.Keyphrases, "|"),
		"entities":           strings.Join(doc.Entities, "|"),
	}
	if doc.Context != nil {
		m["context"] = *doc.Context
	}
	return m
}

var _ core.SearchIndex = (*Index)(nil)
