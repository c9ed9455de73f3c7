// Package analysis provides the HTTP client for the code analyzer backend.
//
// The backend exposes a small job-oriented API: POST /parse submits a folder
// for analysis, GET /status/{job_id} reports job progress and returns the
// dependency graph once completed, and GET /health reports liveness. The
// backend may run synchronously (the graph comes back directly from /parse)
// or asynchronously (a job ID comes back and the caller polls for the
// result); [Client.Analyze] handles both modes transparently.
package analysis
