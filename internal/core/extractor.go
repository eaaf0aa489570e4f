package core

import (
	"context"

	"github.com/markdave123-py/layoutchunker/internal/models"
)

// DocumentAnalyzer turns raw document bytes into layout-analysis output.
// The contentType hint lets an implementation pick its parsing strategy.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, data []byte, contentType string) (*models.RawDocument, error)
}
