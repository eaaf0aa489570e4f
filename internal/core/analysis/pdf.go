package analysis

import (
	"bytes"
	"context"

	pdflib "github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/logger"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

// PDFAnalyzer extracts plain text page by page. It sees no tables.
type PDFAnalyzer struct{}

func (PDFAnalyzer) Analyze(ctx context.Context, data []byte, _ string) (*models.RawDocument, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, core.Upstream("open pdf", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("pdf page text failed", zap.Int("page", i), zap.Error(err))
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	doc := documentFromPages(pages)
	if len(doc.Paragraphs) == 0 {
		return nil, core.Structuref("pdf has no extractable text")
	}
	return doc, nil
}
