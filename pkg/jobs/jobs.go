// Package jobs provides background analysis job tracking and execution.
//
// This package defines the job model and storage interfaces for the server's
// asynchronous mode, with implementations for different backends:
//   - memory: In-memory storage for development/testing and single-instance servers
//   - redis: Redis-backed storage for production multi-instance deployments
//
// # Architecture
//
// A Job tracks one analysis request through its lifecycle: it is created as
// "queued", picked up by a worker ("running"), and ends "completed" with the
// dependency graph or "failed" with an error message. The Store interface
// supports:
//   - Create/Get/Update operations
//   - Automatic expiration of finished jobs (backend-dependent)
//
// The Runner drains a queue of jobs with a fixed worker pool, calling an
// Analyzer for each and persisting the outcome back to the Store.
//
// # Usage
//
// Create a store and runner:
//
//	// Development
//	store := jobs.NewMemoryStore()
//
//	// Production
//	store, err := jobs.NewRedisStore(ctx, "localhost:6379", 0)
//
//	runner := jobs.NewRunner(store, analyzer, jobs.RunnerConfig{Workers: 4})
//	go runner.Run(ctx)
//
// Submit work:
//
//	job := jobs.New("/repo/project")
//	store.Create(ctx, job)
//	runner.Enqueue(ctx, job.ID)
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/codeatlas/codeatlas/pkg/errors"
	"github.com/codeatlas/codeatlas/pkg/graph"
)

// Status is the lifecycle state of a job.
type Status string

// Job lifecycle states. These strings are part of the API contract and match
// what clients observe on GET /status/{job_id}.
const (
	StatusQueued    Status = "queued"
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DefaultTTL is how long finished jobs remain queryable.
const DefaultTTL = 24 * time.Hour

// Job tracks one analysis request.
type Job struct {
	ID         string       `json:"id"`
	FolderPath string       `json:"folder_path"`
	Status     Status       `json:"status"`
	Result     *graph.Graph `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	StartedAt  time.Time    `json:"started_at,omitzero"`
	FinishedAt time.Time    `json:"finished_at,omitzero"`
}

// New creates a queued job for the given folder with a fresh UUID.
func New(folderPath string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		FolderPath: folderPath,
		Status:     StatusQueued,
		CreatedAt:  time.Now().UTC(),
	}
}

// Complete transitions the job to completed with its result.
func (j *Job) Complete(g *graph.Graph) {
	j.Status = StatusCompleted
	j.Result = g
	j.Error = ""
	j.FinishedAt = time.Now().UTC()
}

// Fail transitions the job to failed with the error's user message.
func (j *Job) Fail(err error) {
	j.Status = StatusFailed
	j.Error = errors.UserMessage(err)
	j.FinishedAt = time.Now().UTC()
}

// Store is the interface for job storage backends.
type Store interface {
	// Create persists a new job.
	Create(ctx context.Context, job *Job) error

	// Get retrieves a job by ID.
	// Returns a JOB_NOT_FOUND error if the job doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Job, error)

	// Update persists the job's current state.
	Update(ctx context.Context, job *Job) error

	// Close releases backend resources.
	Close() error
}

// Analyzer produces a dependency graph for a folder. The analysis.Client
// satisfies this; tests substitute stubs.
type Analyzer interface {
	Analyze(ctx context.Context, folderPath string) (*graph.Graph, error)
}
