package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
	"github.com/codeatlas/codeatlas/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file path (or base path for multiple formats)
	formats     []string // output formats: "svg", "dot", "json"
	detailed    bool     // verbose node labels in DOT output
	showEdges   bool     // draw dependency edges in the SVG
	interactive bool     // hover highlighting in the SVG
	graphviz    bool     // rasterize through graphviz instead of the grid renderer
	layoutOpts           // spacing overrides shared with the layout command
}

// newRenderCmd creates the render command for generating visualizations
// from a saved dependency graph.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render a dependency graph as a layered diagram",
		Long: `Render a dependency graph produced by analyze.

The default SVG renderer preserves the layout grid exactly. With --graphviz
the DOT output is rasterized through graphviz instead, which produces a
routed diagram at the cost of grid fidelity.

Examples:
  codeatlas render myproject.graph.json
  codeatlas render myproject.graph.json -f svg,dot,json -o out/myproject
  codeatlas render myproject.graph.json --graphviz --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show file and placement details in DOT labels")
	cmd.Flags().BoolVar(&opts.showEdges, "edges", false, "draw dependency edges")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "embed hover highlighting in the SVG")
	cmd.Flags().BoolVar(&opts.graphviz, "graphviz", false, "rasterize the SVG through graphviz")
	cmd.Flags().Float64Var(&opts.levelHeight, "level-height", 0, "vertical distance between levels")
	cmd.Flags().Float64Var(&opts.nodeSpacing, "node-spacing", 0, "horizontal distance between nodes")
	cmd.Flags().Float64Var(&opts.groupSpacing, "group-spacing", 0, "horizontal distance between groups")
	cmd.Flags().Float64Var(&opts.margin, "margin", 0, "top/left canvas margin")
	cmd.Flags().IntVar(&opts.fallbackLevel, "fallback-level", 0, "level for nodes unreachable from entry points")

	return cmd
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, the extension is stripped from input. If output ends in
// a known format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender loads the graph, runs the layout and render stages of the
// pipeline, and writes each requested format to its own file.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded graph: %d nodes, %d edges", len(g.Nodes), len(g.Edges))

	runner, err := newRunner(ctx, defaultAnalyzerURL, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		FolderPath:    input,
		LevelHeight:   opts.levelHeight,
		NodeSpacing:   opts.nodeSpacing,
		GroupSpacing:  opts.groupSpacing,
		Margin:        opts.margin,
		FallbackLevel: opts.fallbackLevel,
		Formats:       opts.formats,
		ShowEdges:     opts.showEdges,
		Detailed:      opts.detailed,
		Interactive:   opts.interactive,
	}

	res, err := runner.ComputeLayout(ctx, &g, pipeOpts)
	if err != nil {
		return err
	}
	logger.Debugf("Layout computed: %d placements, %d levels", len(res.Placements), len(res.Levels()))

	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, res, &g, pipeOpts)
	if err != nil {
		return err
	}

	if opts.graphviz {
		if err := rasterizeSVG(ctx, artifacts, layout.Decorate(g.Nodes, res), g.Edges, opts.detailed); err != nil {
			return err
		}
	}

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = fmt.Sprintf("%s.%s", base, format)
		}
		if err := writeArtifact(artifacts[format], path); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(len(g.Nodes), len(g.Edges), cached)
	return nil
}

// rasterizeSVG replaces the grid-rendered SVG artifact with a graphviz
// rendering of the DOT representation.
func rasterizeSVG(ctx context.Context, artifacts map[string][]byte, positioned []layout.PositionedNode, edges []graph.Edge, detailed bool) error {
	if _, ok := artifacts[pipeline.FormatSVG]; !ok {
		return nil
	}
	dot := render.ToDOT(positioned, edges, render.DOTOptions{Detailed: detailed})
	svg, err := render.ToSVG(ctx, dot)
	if err != nil {
		return err
	}
	artifacts[pipeline.FormatSVG] = svg
	return nil
}

// writeArtifact writes a rendered artifact to path (or stdout if empty).
func writeArtifact(data []byte, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}
