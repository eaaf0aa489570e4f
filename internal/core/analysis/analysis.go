// Package analysis produces layout-analysis documents from raw blobs. Pre-analyzed
// JSON is decoded as is; PDFs and other formats are reduced to page text paragraphs.
package analysis

import (
	"context"
	"path"
	"strings"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypePDF  = "application/pdf"
)

// Dispatcher routes a blob to the analyzer registered for its content type.
type Dispatcher struct {
	byType   map[string]core.DocumentAnalyzer
	fallback core.DocumentAnalyzer
}

// NewDispatcher wires the JSON and PDF analyzers and uses docconv for anything else.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		byType: map[string]core.DocumentAnalyzer{
			ContentTypeJSON: JSONAnalyzer{},
			ContentTypePDF:  PDFAnalyzer{},
		},
		fallback: NewDocconvAnalyzer(false),
	}
}

// Register overrides the analyzer for one content type.
func (d *Dispatcher) Register(contentType string, a core.DocumentAnalyzer) {
	d.byType[normalizeType(contentType)] = a
}

func (d *Dispatcher) Analyze(ctx context.Context, data []byte, contentType string) (*models.RawDocument, error) {
	if len(data) == 0 {
		return nil, core.Validationf("document is empty")
	}
	if a, ok := d.byType[normalizeType(contentType)]; ok {
		return a.Analyze(ctx, data, contentType)
	}
	return d.fallback.Analyze(ctx, data, contentType)
}

// ContentTypeFor guesses a blob's content type from its extension.
func ContentTypeFor(name string) string {
	if strings.EqualFold(path.Ext(name), ".json") {
		return ContentTypeJSON
	}
	return docconv.MimeTypeByExtension(name)
}

func normalizeType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

var _ core.DocumentAnalyzer = (*Dispatcher)(nil)
