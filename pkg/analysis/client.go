package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeatlas/codeatlas/pkg/errors"
	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/httputil"
	"github.com/codeatlas/codeatlas/pkg/observability"
)

const (
	httpTimeout         = 30 * time.Second
	defaultPollInterval = 500 * time.Millisecond
)

// Status is the lifecycle state of an analysis job as reported by the backend.
type Status string

// Job statuses the backend reports. A job is enqueued as "queued", shows up
// as "pending" until a worker picks it up, then transitions through "running"
// to either "completed" or "failed".
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

// SubmitResult is the outcome of submitting a folder for analysis.
// In synchronous mode Graph is set directly; in asynchronous mode JobID
// identifies the job to poll.
type SubmitResult struct {
	Async bool
	JobID string
	Graph *graph.Graph
}

// JobState is one observation of an analysis job.
type JobState struct {
	JobID  string       `json:"job_id"`
	Status Status       `json:"status"`
	Result *graph.Graph `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// Health is the backend's liveness report.
type Health struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	AsyncMode bool   `json:"async_mode"`
}

// Client talks to the analyzer backend over HTTP. It handles both
// synchronous and asynchronous backends, retries transient failures, and
// emits HTTP events through the observability hooks.
type Client struct {
	http         *http.Client
	baseURL      string
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithPollInterval sets the delay between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// NewClient creates a client for the analyzer backend at baseURL
// (e.g. "http://localhost:5000").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:         &http.Client{Timeout: httpTimeout},
		baseURL:      strings.TrimRight(baseURL, "/"),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

// Submit posts a folder path to the backend for analysis.
// Depending on the backend's mode, the result either carries the graph
// directly (synchronous) or a job ID to poll (asynchronous).
func (c *Client) Submit(ctx context.Context, folderPath string) (*SubmitResult, error) {
	if err := errors.ValidateFolderPath(folderPath); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"folder_path": folderPath})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to encode request")
	}

	var result *SubmitResult
	err = httputil.RetryWithBackoff(ctx, func() error {
		resp, err := c.do(ctx, http.MethodPost, "/parse", bytes.NewReader(body))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			// Synchronous backend: the graph comes back directly.
			var g graph.Graph
			if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
				return errors.Wrap(errors.ErrCodeAnalysisFailed, err, "failed to decode analysis result")
			}
			result = &SubmitResult{Graph: &g}
			return nil

		case http.StatusAccepted:
			// Asynchronous backend: a job was queued.
			var state JobState
			if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
				return errors.Wrap(errors.ErrCodeAnalysisFailed, err, "failed to decode job submission")
			}
			result = &SubmitResult{Async: true, JobID: state.JobID}
			return nil

		default:
			return c.statusError(resp.StatusCode, resp)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Status fetches the current state of an analysis job.
// A failed job is reported as a JobState with StatusFailed, not an error;
// errors indicate the job could not be looked up at all.
func (c *Client) Status(ctx context.Context, jobID string) (*JobState, error) {
	if jobID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "job ID is empty")
	}

	var state *JobState
	err := httputil.RetryWithBackoff(ctx, func() error {
		resp, err := c.do(ctx, http.MethodGet, "/status/"+url.PathEscape(jobID), nil)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK, http.StatusInternalServerError:
			// The backend reports failed jobs with a 500 and a JSON body
			// carrying the error message.
			var s JobState
			if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
				return errors.Wrap(errors.ErrCodeAnalysisFailed, err, "failed to decode job status")
			}
			if s.Status == "" {
				return errors.New(errors.ErrCodeAnalysisFailed, "backend returned a malformed job status")
			}
			state = &s
			return nil

		case http.StatusNotFound:
			return errors.New(errors.ErrCodeJobNotFound, "job %q not found", jobID)

		default:
			return c.statusError(resp.StatusCode, resp)
		}
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Poll waits for an analysis job to reach a terminal state, querying the
// backend at the client's poll interval. It returns the completed graph, or
// an ANALYSIS_FAILED error carrying the backend's message when the job
// failed. Cancellation of ctx aborts the wait.
func (c *Client) Poll(ctx context.Context, jobID string) (*graph.Graph, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		state, err := c.Status(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "gave up waiting for analysis job")
			}
			return nil, err
		}

		switch state.Status {
		case StatusCompleted:
			if state.Result == nil {
				return nil, errors.New(errors.ErrCodeAnalysisFailed, "completed job has no result")
			}
			return state.Result, nil
		case StatusFailed:
			msg := state.Error
			if msg == "" {
				msg = "analysis failed"
			}
			return nil, errors.New(errors.ErrCodeAnalysisFailed, "%s", msg)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "gave up waiting for analysis job")
		case <-ticker.C:
		}
	}
}

// Analyze submits a folder and waits for the graph, handling both
// synchronous and asynchronous backends. This is the call most consumers
// want; Submit/Poll are for callers that track jobs themselves.
func (c *Client) Analyze(ctx context.Context, folderPath string) (*graph.Graph, error) {
	start := time.Now()
	observability.Pipeline().OnAnalyzeStart(ctx, folderPath)

	g, err := c.analyze(ctx, folderPath)

	nodes := 0
	if g != nil {
		nodes = len(g.Nodes)
	}
	observability.Pipeline().OnAnalyzeComplete(ctx, folderPath, nodes, time.Since(start), err)
	return g, err
}

func (c *Client) analyze(ctx context.Context, folderPath string) (*graph.Graph, error) {
	sub, err := c.Submit(ctx, folderPath)
	if err != nil {
		return nil, err
	}
	if !sub.Async {
		return sub.Graph, nil
	}
	return c.Poll(ctx, sub.JobID)
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, resp)
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAnalyzerUnavailable, err, "failed to decode health response")
	}
	return &h, nil
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = body
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	observability.HTTP().OnRequest(ctx, method, req.URL.Host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, method, req.URL.Host, path, err)
		wrapped := errors.Wrap(errors.ErrCodeAnalyzerUnavailable, err, "analyzer backend unreachable")
		return nil, httputil.Retryable(wrapped)
	}

	observability.HTTP().OnResponse(ctx, method, req.URL.Host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// statusError converts an unexpected HTTP status into a domain error.
// 5xx statuses are retryable except on /status, where a 500 carries the
// failed-job body and is handled by the caller.
func (c *Client) statusError(code int, resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	msg := payload.Error
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d from analyzer backend", code)
	}

	switch {
	case code == http.StatusBadRequest:
		return errors.New(errors.ErrCodeInvalidInput, "%s", msg)
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeAnalyzerUnavailable, "%s", msg))
	default:
		return errors.New(errors.ErrCodeAnalysisFailed, "%s", msg)
	}
}
