package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	analyzer string // analyzer backend base URL
	output   string // output file path (stdout if empty)
	refresh  bool   // bypass the graph cache
	noCache  bool   // disable caching entirely
}

// newAnalyzeCmd creates the analyze command. It submits a folder to the
// analyzer backend, waits for the result (polling in async deployments),
// and writes the dependency graph as JSON.
func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOpts{analyzer: defaultAnalyzerURL}

	cmd := &cobra.Command{
		Use:   "analyze <folder>",
		Short: "Analyze a codebase and save its dependency graph",
		Long: `Analyze a codebase folder through the analyzer backend.

The folder path is resolved by the analyzer backend, not by this machine,
so it must be a path the backend can see.

Examples:
  codeatlas analyze /repos/myproject -o myproject.graph.json
  codeatlas analyze /repos/myproject --refresh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.analyzer, "analyzer", opts.analyzer, "analyzer backend base URL")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache and re-analyze")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runAnalyze fetches the dependency graph and writes it to opts.output.
func runAnalyze(ctx context.Context, folder string, opts *analyzeOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := newRunner(ctx, opts.analyzer, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %s", folder))
	spinner.Start()

	g, cached, err := runner.AnalyzeWithCacheInfo(ctx, pipeline.Options{
		FolderPath: folder,
		Refresh:    opts.refresh,
	})
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Analysis failed: %v", err))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Analyzed %s", folder))
	printStats(len(g.Nodes), len(g.Edges), cached)

	if err := writeGraph(*g, opts.output, logger); err != nil {
		return err
	}
	if opts.output != "" {
		printFile(opts.output)
		printNextStep("Render it", fmt.Sprintf("%s render %s", appName, opts.output))
	}
	return nil
}

// writeGraph serializes g as JSON to the specified path (or stdout if empty).
func writeGraph(g graph.Graph, path string, logger interface{ Debugf(string, ...any) }) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := graph.WriteGraph(g, out); err != nil {
		return err
	}
	if path != "" {
		logger.Debugf("Wrote graph to %s", path)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
