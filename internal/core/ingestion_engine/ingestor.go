package ingestion_engine

import "context"

type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(ctx context.Context, blob, submittedBy string) (Job, error)
	Job(id string) (Job, bool)
	ProcessOne(ctx context.Context, blob string) (*Result, error)
}

var _ Ingestor = (*DocumentIngestor)(nil)
