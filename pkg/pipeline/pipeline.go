// Package pipeline provides the core visualization pipeline for codeatlas.
//
// This package implements the complete analyze → layout → render pipeline
// that can be used by CLI, API, and worker components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Analyze: Submit a codebase folder to the analyzer backend and collect
//     the dependency graph
//  2. Layout: Compute level, group, and position for every node
//  3. Render: Generate output in various formats (SVG, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage is cached separately: a changed render option reuses the
// cached graph and layout.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(client, cache, nil, logger)
//	opts := pipeline.Options{
//	    FolderPath: "/repo/project",
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codeatlas/codeatlas/pkg/cache"
	"github.com/codeatlas/codeatlas/pkg/errors"
	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Analyze options
	FolderPath string `json:"folder_path"`
	Refresh    bool   `json:"refresh,omitempty"` // Bypass caches and re-analyze

	// Layout options. Zero values fall back to the layout package defaults.
	LevelHeight   float64 `json:"level_height,omitempty"`
	NodeSpacing   float64 `json:"node_spacing,omitempty"`
	GroupSpacing  float64 `json:"group_spacing,omitempty"`
	Margin        float64 `json:"margin,omitempty"`
	FallbackLevel int     `json:"fallback_level,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	ShowEdges   bool     `json:"show_edges,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`    // DOT only: verbose node labels
	Interactive bool     `json:"interactive,omitempty"` // SVG only: hover highlighting

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the analyzed dependency graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout holds the placement of every node.
	Layout layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	AnalyzeTime time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalyzeHit bool // Whether the graph came from cache
	LayoutHit  bool // Whether the layout came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForAnalyze(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForAnalyze checks required fields for the analyze stage.
func (o *Options) ValidateForAnalyze() error {
	if err := errors.ValidateFolderPath(o.FolderPath); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutConfig converts the options' layout knobs into a layout.Config.
// Zero fields inherit the layout package defaults.
func (o *Options) LayoutConfig() layout.Config {
	return layout.Config{
		LevelHeight:   o.LevelHeight,
		NodeSpacing:   o.NodeSpacing,
		GroupSpacing:  o.GroupSpacing,
		Margin:        o.Margin,
		FallbackLevel: o.FallbackLevel,
	}
}

// GraphKeyOpts returns cache key options for the analyze stage.
func (o *Options) GraphKeyOpts(analyzerURL string) cache.GraphKeyOpts {
	return cache.GraphKeyOpts{AnalyzerURL: analyzerURL}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		LevelHeight:   o.LevelHeight,
		NodeSpacing:   o.NodeSpacing,
		GroupSpacing:  o.GroupSpacing,
		Margin:        o.Margin,
		FallbackLevel: o.FallbackLevel,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		ShowEdges:   o.ShowEdges,
		Detailed:    o.Detailed,
		Interactive: o.Interactive,
	}
}
