package analysis

import (
	"context"
	"encoding/json"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

// JSONAnalyzer decodes output already produced by an external layout service.
type JSONAnalyzer struct{}

func (JSONAnalyzer) Analyze(ctx context.Context, data []byte, _ string) (*models.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc models.RawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, core.Validationf("decode layout json: %v", err)
	}
	return &doc, nil
}
