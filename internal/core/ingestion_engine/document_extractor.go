package ingestion_engine

import (
	"context"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/core/analysis"
	"github.com/markdave123-py/layoutchunker/internal/logger"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

// sourceFor validates that blob lives under the unprocessed folder and derives the
// chunk source metadata from it. Folder is the sub-path below the unprocessed folder.
func (i *DocumentIngestor) sourceFor(blob string) (models.SourceDocument, string, error) {
	prefix := i.cfg.UnprocessedFolder + "/"
	clean := path.Clean(strings.TrimPrefix(blob, "/"))
	if !strings.HasPrefix(clean, prefix) || clean == prefix {
		return models.SourceDocument{}, "", core.Validationf("blob %q is not under %q", blob, prefix)
	}
	rel := strings.TrimPrefix(clean, prefix)

	folder := path.Dir(rel)
	if folder == "." {
		folder = ""
	}
	return models.SourceDocument{
		FileName: path.Base(rel),
		FileURI:  i.blobs.URI(clean),
		Folder:   folder,
	}, rel, nil
}

// extractStructure fetches the blob, runs layout analysis and builds the ordered
// structure records.
func (i *DocumentIngestor) extractStructure(ctx context.Context, blob string) ([]models.StructureRecord, error) {
	ok, err := i.blobs.Exists(ctx, blob)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.Validationf("blob %q does not exist", blob)
	}

	data, err := i.blobs.Get(ctx, blob)
	if err != nil {
		return nil, err
	}

	contentType := analysis.ContentTypeFor(blob)
	raw, err := i.analyzer.Analyze(ctx, data, contentType)
	if err != nil {
		return nil, err
	}
	logger.Debug("document analyzed",
		zap.String("blob", blob),
		zap.String("content_type", contentType),
		zap.Int("paragraphs", len(raw.Paragraphs)),
		zap.Int("tables", len(raw.Tables)),
	)

	return i.builder.Build(raw)
}
