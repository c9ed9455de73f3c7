// Package cache provides content-addressed caching for pipeline stages.
//
// Analysis results, layout results, and rendered artifacts are cached
// independently, keyed by content hashes plus the options that shaped them.
// The cache is transient by contract: entries expire by TTL and nothing is
// treated as a system of record - layouts in particular are always
// recomputable from the graph.
//
// Implementations: [FileCache] for CLI use, [RedisCache] for the server,
// [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// TTLs per pipeline stage. Graphs change only when the codebase is
// re-analyzed; layouts and artifacts are pure functions of their inputs and
// keep longer.
const (
	// TTLGraph is the lifetime of cached analysis results.
	TTLGraph = 1 * time.Hour

	// TTLLayout is the lifetime of cached layout results.
	TTLLayout = 24 * time.Hour

	// TTLArtifact is the lifetime of cached rendered artifacts.
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte values under string keys with per-entry TTL.
// Implementations must treat Get misses and expired entries identically.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// =============================================================================
// Keyer - Cache Key Construction
// =============================================================================

// GraphKeyOpts are the analyzer options that shape a cached graph.
type GraphKeyOpts struct {
	AnalyzerURL string
}

// LayoutKeyOpts are the layout options that shape a cached layout.
type LayoutKeyOpts struct {
	LevelHeight   float64
	NodeSpacing   float64
	GroupSpacing  float64
	Margin        float64
	FallbackLevel int
}

// ArtifactKeyOpts are the render options that shape a cached artifact.
// Every option that changes rendered bytes must appear here, or two renders
// with different options would collide on the same key.
type ArtifactKeyOpts struct {
	Format      string
	ShowEdges   bool
	Detailed    bool
	Interactive bool
}

// Keyer builds cache keys for each pipeline stage. Keys embed every input
// that influences the cached value, so stale reuse is structurally
// impossible.
type Keyer interface {
	// GraphKey keys an analysis result by folder path and analyzer options.
	GraphKey(folderPath string, opts GraphKeyOpts) string

	// LayoutKey keys a layout result by graph content hash and layout options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by layout content hash and format.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds hash-based keys with stage prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// GraphKey generates a key for analysis result caching.
func (k *DefaultKeyer) GraphKey(folderPath string, opts GraphKeyOpts) string {
	return hashKey("graph", folderPath, opts)
}

// LayoutKey generates a key for layout result caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
