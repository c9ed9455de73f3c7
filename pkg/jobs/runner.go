package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codeatlas/codeatlas/pkg/observability"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 64
)

// RunnerConfig configures the job runner.
type RunnerConfig struct {
	// Workers is the number of concurrent analysis workers. Defaults to 4.
	Workers int

	// QueueSize is the capacity of the job queue. Enqueue fails once the
	// queue is full. Defaults to 64.
	QueueSize int

	// Logger receives job lifecycle messages. Defaults to log.Default().
	Logger *log.Logger
}

func (c RunnerConfig) withDefaults() RunnerConfig {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// Runner executes queued analysis jobs with a fixed worker pool.
// Each worker loads the job from the store, marks it running, calls the
// analyzer, and persists the outcome.
type Runner struct {
	store    Store
	analyzer Analyzer
	cfg      RunnerConfig

	queue chan string
	wg    sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewRunner creates a runner draining jobs from the store-backed queue.
func NewRunner(store Store, analyzer Analyzer, cfg RunnerConfig) *Runner {
	cfg = cfg.withDefaults()
	return &Runner{
		store:    store,
		analyzer: analyzer,
		cfg:      cfg,
		queue:    make(chan string, cfg.QueueSize),
	}
}

// Enqueue schedules a job for execution. The job must already exist in the
// store. Returns false if the queue is full or the runner has shut down.
func (r *Runner) Enqueue(ctx context.Context, jobID string) bool {
	// Hold the lock across the send so Run can't close the queue between
	// the shutdown check and the send.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}

	select {
	case r.queue <- jobID:
		observability.Jobs().OnJobEnqueued(ctx, jobID)
		return true
	default:
		return false
	}
}

// Run starts the worker pool and blocks until ctx is cancelled. After
// cancellation it drains in-flight jobs and returns.
func (r *Runner) Run(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	for range r.cfg.Workers {
		r.wg.Add(1)
		go r.worker(ctx)
	}

	<-ctx.Done()

	r.mu.Lock()
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()
	for jobID := range r.queue {
		if ctx.Err() != nil {
			return
		}
		r.execute(ctx, jobID)
	}
}

func (r *Runner) execute(ctx context.Context, jobID string) {
	logger := r.cfg.Logger.With("job", jobID)

	job, err := r.store.Get(ctx, jobID)
	if err != nil {
		logger.Error("dropping unknown job", "err", err)
		return
	}

	job.Status = StatusRunning
	job.StartedAt = time.Now().UTC()
	if err := r.store.Update(ctx, job); err != nil {
		logger.Error("failed to mark job running", "err", err)
		return
	}

	observability.Jobs().OnJobStarted(ctx, jobID)
	logger.Info("analyzing", "folder", job.FolderPath)
	start := time.Now()

	g, err := r.analyzer.Analyze(ctx, job.FolderPath)
	if err != nil {
		job.Fail(err)
		logger.Error("analysis failed", "err", err)
	} else {
		job.Complete(g)
		logger.Info("analysis completed", "nodes", len(g.Nodes), "edges", len(g.Edges),
			"duration", time.Since(start).Round(time.Millisecond))
	}

	observability.Jobs().OnJobFinished(ctx, jobID, time.Since(start), err)

	if err := r.store.Update(ctx, job); err != nil {
		logger.Error("failed to persist job outcome", "err", err)
	}
}
