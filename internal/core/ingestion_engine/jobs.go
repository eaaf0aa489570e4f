package ingestion_engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobReady      JobStatus = "ready"
	JobFailed     JobStatus = "failed"
)

// Job tracks one submitted document through the pipeline.
type Job struct {
	ID          string    `json:"id"`
	Blob        string    `json:"blob"`
	SubmittedBy string    `json:"submitted_by,omitempty"`
	Status      JobStatus `json:"status"`
	Chunks      int       `json:"chunks"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*Job), now: time.Now}
}

func (s *jobStore) create(blob, submittedBy string) Job {
	now := s.now().UTC()
	j := &Job{
		ID:          uuid.NewString(),
		Blob:        blob,
		SubmittedBy: submittedBy,
		Status:      JobQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()
	return *j
}

func (s *jobStore) get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

func (s *jobStore) update(id string, fn func(j *Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		fn(j)
		j.UpdatedAt = s.now().UTC()
	}
}
