package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hospital-route-service/internal/adapters/ors"
	"hospital-route-service/internal/adapters/repositories"
	"hospital-route-service/internal/config"
	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/platform/obs"
	"hospital-route-service/internal/registry"
	"hospital-route-service/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	cfgFile  string
	outDir   string
	registry string
	profile  string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "matrixgen",
		Short:         "Build the hospital distance/duration matrix dataset from OpenRouteService.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "output directory (overrides dataset.dir)")
	cmd.Flags().StringVar(&opts.registry, "registry", "", "node registry JSON file (default is the embedded Kupang registry)")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "ORS routing profile (overrides ors.profile)")

	return cmd
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return err
	}
	if opts.outDir != "" {
		cfg.Dataset.Dir = opts.outDir
	}
	if opts.profile != "" {
		cfg.ORS.Profile = opts.profile
	}
	if opts.registry != "" {
		cfg.Dataset.Registry = opts.registry
	}

	logger := obs.NewLogger(cfg.Logger)
	defer func() { _ = logger.Sync() }()
	ctx = obs.WithLogger(ctx, logger)

	if !cfg.EnvFileLoaded {
		logger.Info("no .env file found, using environment variables")
	}

	nodes, err := loadRegistry(cfg.Dataset.Registry)
	if err != nil {
		logger.Error("load registry failed", zap.Error(err))
		return err
	}

	provider, err := ors.NewProvider(cfg.ORS)
	if err != nil {
		logger.Error("configure ORS provider failed", zap.Error(err))
		return err
	}

	if err := os.MkdirAll(cfg.Dataset.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %q: %w", cfg.Dataset.Dir, err)
	}
	writer := repositories.NewFileDatasetWriter(cfg.Dataset.Dir, cfg.Dataset.File, cfg.Dataset.DistanceCSV, cfg.Dataset.DurationCSV)

	builder := services.NewMatrixBuilder(provider, writer, provider.Profile())
	ds, err := builder.Build(ctx, nodes)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var de *domain.Error
		if errors.As(err, &de) && de.Status != 0 {
			fields = append(fields, zap.Int("status", de.Status), zap.String("body", de.Body))
		}
		logger.Error("matrix build aborted", fields...)
		return err
	}

	logger.Info("dataset written",
		zap.String("dir", cfg.Dataset.Dir),
		zap.String("run_id", ds.Meta.RunID),
		zap.Int("n_locations", ds.Meta.NLocations),
	)
	return nil
}

func loadRegistry(path string) ([]domain.Node, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.LoadFile(path)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
