package services

import (
	"context"
	"path"
	"strings"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/core/ingestion_engine"
)

// DocumentService accepts documents for processing, either already in the
// unprocessed folder or uploaded through the API.
type DocumentService struct {
	storage     core.BlobStore
	ingestor    ingestion_engine.Ingestor
	unprocessed string
}

func NewDocumentService(storage core.BlobStore, ingestor ingestion_engine.Ingestor, unprocessedFolder string) *DocumentService {
	return &DocumentService{storage: storage, ingestor: ingestor, unprocessed: unprocessedFolder}
}

// Submit schedules a blob that is already stored under the unprocessed folder.
func (s *DocumentService) Submit(ctx context.Context, userID, blob string) (ingestion_engine.Job, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return ingestion_engine.Job{}, core.Validationf("blob is required")
	}
	return s.ingestor.Enqueue(ctx, blob, userID)
}

// UploadAndSubmit stores data under the unprocessed folder and schedules it.
func (s *DocumentService) UploadAndSubmit(ctx context.Context, userID, filename, contentType string, data []byte) (ingestion_engine.Job, error) {
	if len(data) == 0 {
		return ingestion_engine.Job{}, core.Validationf("uploaded file is empty")
	}
	key, err := s.objectKey(filename)
	if err != nil {
		return ingestion_engine.Job{}, err
	}
	if err := s.storage.Put(ctx, key, data, contentType); err != nil {
		return ingestion_engine.Job{}, err
	}
	return s.ingestor.Enqueue(ctx, key, userID)
}

func (s *DocumentService) Job(id string) (ingestion_engine.Job, bool) {
	return s.ingestor.Job(id)
}

// objectKey creates a consistent key under the unprocessed folder.
func (s *DocumentService) objectKey(filename string) (string, error) {
	filename = path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	filename = strings.ReplaceAll(filename, " ", "_")
	if filename == "" || filename == "." || filename == "/" || filename == ".." {
		return "", core.Validationf("invalid file name")
	}
	return path.Join(s.unprocessed, filename), nil
}
