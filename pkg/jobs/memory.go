package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/codeatlas/codeatlas/pkg/errors"
)

// MemoryStore is an in-memory job store for development and single-instance
// deployments. Finished jobs are evicted lazily after the TTL.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	ttl  time.Duration
}

// NewMemoryStore creates an in-memory job store with the default TTL.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*Job),
		ttl:  DefaultTTL,
	}
}

// Create persists a new job.
func (s *MemoryStore) Create(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

// Get retrieves a job by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok || s.expired(job) {
		return nil, errors.New(errors.ErrCodeJobNotFound, "job %q not found", id)
	}
	return cloneJob(job), nil
}

// Update persists the job's current state.
func (s *MemoryStore) Update(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return errors.New(errors.ErrCodeJobNotFound, "job %q not found", job.ID)
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

// Close removes all stored jobs.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = make(map[string]*Job)
	return nil
}

func (s *MemoryStore) expired(job *Job) bool {
	return job.Status.Terminal() && time.Since(job.FinishedAt) > s.ttl
}

// cloneJob copies a job so callers can't mutate stored state through shared
// pointers. The graph payload is treated as immutable once attached.
func cloneJob(job *Job) *Job {
	c := *job
	return &c
}

var _ Store = (*MemoryStore)(nil)
