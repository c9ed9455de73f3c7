package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codeatlas/codeatlas/pkg/cache"
	"github.com/codeatlas/codeatlas/pkg/errors"
	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/observability"
	"github.com/codeatlas/codeatlas/pkg/render"
)

// Analyzer produces a dependency graph for a folder. analysis.Client is the
// production implementation; tests substitute stubs.
type Analyzer interface {
	Analyze(ctx context.Context, folderPath string) (*graph.Graph, error)
	BaseURL() string
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the analyzer, cache, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Analyzer Analyzer
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner with the given analyzer, cache, and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(analyzer Analyzer, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Analyzer: analyzer,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute runs the complete analyze → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Analyze
	analyzeStart := time.Now()
	g, analyzeHit, err := r.AnalyzeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)
	result.CacheInfo.AnalyzeHit = analyzeHit

	// Compute graph hash for cache keys and API responses
	if graphData, err := graph.MarshalGraph(*g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("analyzed codebase",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"duration", result.Stats.AnalyzeTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"placements", len(res.Placements),
		"levels", len(res.Levels()),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, g, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// AnalyzeWithCacheInfo fetches the dependency graph with caching and returns
// cache hit info.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.GraphKey(opts.FolderPath, opts.GraphKeyOpts(r.Analyzer.BaseURL()))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := graph.UnmarshalGraph(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return &cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	g, err := r.Analyzer.Analyze(ctx, opts.FolderPath)
	if err != nil {
		return nil, false, err
	}

	if data, err := graph.MarshalGraph(*g); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
		observability.Cache().OnCacheSet(ctx, "graph", len(data))
	}

	return g, false, nil
}

// Analyze is a convenience wrapper that discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*graph.Graph, error) {
	g, _, err := r.AnalyzeWithCacheInfo(ctx, opts)
	return g, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (layout.Result, bool, error) {
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(g.Nodes))

	graphData, err := graph.MarshalGraph(*g)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidGraph, err, "failed to serialize graph for cache key")
		observability.Pipeline().OnLayoutComplete(ctx, 0, time.Since(start), err)
		return layout.Result{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				observability.Pipeline().OnLayoutComplete(ctx, len(cached.Levels()), time.Since(start), nil)
				return cached, true, nil
			}
			// Corrupt entry: fall through and recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	res := layout.Compute(g.Nodes, g.Edges, opts.LayoutConfig())

	if data, err := json.Marshal(res); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	observability.Pipeline().OnLayoutComplete(ctx, len(res.Levels()), time.Since(start), nil)
	return res, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *graph.Graph, opts Options) (layout.Result, error) {
	res, _, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res layout.Result, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := json.Marshal(res)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidLayout, err, "failed to serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := !opts.Refresh
	artifacts := make(map[string][]byte)

	if allCached {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := r.renderAll(ctx, res, g, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res layout.Result, g *graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, g, opts)
	return artifacts, err
}

func (r *Runner) renderAll(ctx context.Context, res layout.Result, g *graph.Graph, opts Options) (map[string][]byte, error) {
	positioned := layout.Decorate(g.Nodes, res)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		start := time.Now()
		observability.Pipeline().OnRenderStart(ctx, format)

		var data []byte
		var err error
		switch format {
		case FormatSVG:
			var svgOpts []render.SVGOption
			if opts.ShowEdges {
				svgOpts = append(svgOpts, render.WithEdges())
			}
			if opts.Interactive {
				svgOpts = append(svgOpts, render.WithInteraction())
			}
			data = render.SVG(positioned, g.Edges, svgOpts...)

		case FormatDOT:
			data = []byte(render.ToDOT(positioned, g.Edges, render.DOTOptions{Detailed: opts.Detailed}))

		case FormatJSON:
			data, err = json.MarshalIndent(struct {
				Nodes []layout.PositionedNode `json:"nodes"`
				Edges []graph.Edge            `json:"edges"`
			}{positioned, g.Edges}, "", "  ")

		default:
			err = ValidateFormat(format)
		}

		observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
