package analysis

import (
	"bytes"
	"context"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

// DocconvAnalyzer converts any format docconv understands into a single page of text.
type DocconvAnalyzer struct {
	useReadability bool
}

func NewDocconvAnalyzer(useReadability bool) *DocconvAnalyzer {
	return &DocconvAnalyzer{useReadability: useReadability}
}

func (e *DocconvAnalyzer) Analyze(ctx context.Context, data []byte, contentType string) (*models.RawDocument, error) {
	res, err := docconv.Convert(bytes.NewReader(data), contentType, e.useReadability)
	if err != nil {
		return nil, core.Upstream("docconv "+contentType, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := documentFromPages([]string{res.Body})
	if len(doc.Paragraphs) == 0 {
		return nil, core.Structuref("docconv extracted no text for %s", contentType)
	}
	return doc, nil
}
