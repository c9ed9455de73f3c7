package cli

import (
	"context"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/internal/config"
	"github.com/codeatlas/codeatlas/internal/server"
	"github.com/codeatlas/codeatlas/pkg/analysis"
	"github.com/codeatlas/codeatlas/pkg/cache"
	"github.com/codeatlas/codeatlas/pkg/jobs"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
	"github.com/codeatlas/codeatlas/pkg/snapshot"
)

// newServeCmd creates the serve command, which runs the codeatlas HTTP API.
func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the codeatlas HTTP API",
		Long: `Run the codeatlas HTTP API.

Configuration is read from the optional TOML file given with --config and
from CODEATLAS_* environment variables. With a Redis address configured the
job store and pipeline cache are shared across replicas; with a Mongo URI
configured snapshots survive restarts. Without either, everything is kept
in memory.

Examples:
  codeatlas serve
  codeatlas serve --config /etc/codeatlas/config.toml
  CODEATLAS_ASYNC_MODE=true CODEATLAS_REDIS_ADDR=redis:6379 codeatlas serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")

	return cmd
}

// runServe wires the server from configuration and blocks until ctx is
// cancelled.
func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	if level, err := charmlog.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	client := analysis.NewClient(cfg.Analyzer.URL,
		analysis.WithPollInterval(time.Duration(cfg.Analyzer.PollIntervalMS)*time.Millisecond))

	pipelineCache, err := serverCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(client, pipelineCache, nil, logger)
	defer runner.Close()

	store, err := jobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var jobRunner *jobs.Runner
	if cfg.Server.AsyncMode {
		jobRunner = jobs.NewRunner(store, client, jobs.RunnerConfig{
			Workers: cfg.Server.Workers,
			Logger:  logger,
		})
	}

	snaps, err := snapshotStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer snaps.Close(context.Background())

	return server.New(cfg, runner, store, jobRunner, snaps, logger).Run(ctx)
}

// serverCache returns the shared Redis cache when configured, otherwise a
// null cache. The server deliberately does not use the CLI's file cache:
// replicas must agree on cache contents or none should cache at all.
func serverCache(ctx context.Context, cfg config.Config, logger *charmlog.Logger) (cache.Cache, error) {
	if cfg.Redis.Addr == "" {
		return cache.NewNullCache(), nil
	}
	logger.Info("using redis cache", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.DB)
}

func jobStore(ctx context.Context, cfg config.Config, logger *charmlog.Logger) (jobs.Store, error) {
	if cfg.Redis.Addr == "" {
		return jobs.NewMemoryStore(), nil
	}
	logger.Info("using redis job store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return jobs.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.DB)
}

func snapshotStore(ctx context.Context, cfg config.Config, logger *charmlog.Logger) (snapshot.Store, error) {
	if cfg.Mongo.URI == "" {
		return snapshot.NewMemoryStore(), nil
	}
	logger.Info("using mongo snapshot store", "uri", cfg.Mongo.URI)
	return snapshot.NewMongoStore(ctx, cfg.Mongo.URI)
}
