package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/layout"
)

// layoutOpts holds the command-line flags for the layout command.
// Zero-valued spacing flags fall back to the layout engine defaults.
type layoutOpts struct {
	output        string
	levelHeight   float64
	nodeSpacing   float64
	groupSpacing  float64
	margin        float64
	fallbackLevel int
}

func (o *layoutOpts) config() layout.Config {
	return layout.Config{
		LevelHeight:   o.levelHeight,
		NodeSpacing:   o.nodeSpacing,
		GroupSpacing:  o.groupSpacing,
		Margin:        o.margin,
		FallbackLevel: o.fallbackLevel,
	}
}

// newLayoutCmd creates the layout command. It loads a saved dependency graph
// and computes level, group, and position for every node.
func newLayoutCmd() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout <graph.json>",
		Short: "Compute a layered layout for a saved graph",
		Long: `Compute a layered layout for a dependency graph produced by analyze.

Entry-point modules sit at level 0 and everything else is placed by its
distance from an entry point. Nodes are grouped by top-level directory.

Example:
  codeatlas layout myproject.graph.json -o myproject.layout.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().Float64Var(&opts.levelHeight, "level-height", 0, "vertical distance between levels")
	cmd.Flags().Float64Var(&opts.nodeSpacing, "node-spacing", 0, "horizontal distance between nodes")
	cmd.Flags().Float64Var(&opts.groupSpacing, "group-spacing", 0, "horizontal distance between groups")
	cmd.Flags().Float64Var(&opts.margin, "margin", 0, "top/left canvas margin")
	cmd.Flags().IntVar(&opts.fallbackLevel, "fallback-level", 0, "level for nodes unreachable from entry points")

	return cmd
}

// runLayout loads the graph, computes placements, and writes the positioned
// nodes as JSON. Edges referencing unknown nodes are dropped from the output
// and reported as a warning.
func runLayout(ctx context.Context, input string, opts *layoutOpts) error {
	logger := loggerFromContext(ctx)

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	d := graph.NewDigraph(g.Nodes, g.Edges)
	logger.Infof("Loaded graph: %d nodes, %d edges", d.NodeCount(), d.EdgeCount())
	if d.DroppedEdges > 0 {
		logger.Warnf("Dropped %d edges referencing unknown nodes", d.DroppedEdges)
	}
	if d.NodeCount() > 0 && len(d.Entries()) == 0 {
		logger.Warnf("No entry points in graph; all nodes placed at the fallback level (%d roots without importers)", len(d.Sources()))
	}

	prog := newProgress(logger)
	res := layout.Compute(g.Nodes, g.Edges, opts.config())
	positioned := layout.Decorate(g.Nodes, res)
	prog.done(fmt.Sprintf("Placed %d nodes across %d levels", len(positioned), len(res.Levels())))

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Nodes []layout.PositionedNode `json:"nodes"`
		Edges []graph.Edge            `json:"edges"`
	}{positioned, d.Edges()}); err != nil {
		return err
	}
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}
