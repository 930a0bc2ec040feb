package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"hospital-route-service/internal/adapters/cache"
	"hospital-route-service/internal/adapters/ors"
	"hospital-route-service/internal/adapters/repositories"
	"hospital-route-service/internal/api"
	"hospital-route-service/internal/config"
	"hospital-route-service/internal/platform/db"
	"hospital-route-service/internal/platform/kv"
	"hospital-route-service/internal/platform/obs"
	"hospital-route-service/internal/ports"
	"hospital-route-service/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (ORS, dataset file, route cache) behind ports and starts the HTTP server.
func main() {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serve the hospital dataset and route geometries over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			logger := obs.NewLogger(cfg.Logger)
			defer func() { _ = logger.Sync() }()

			if err := run(cfg, logger); err != nil {
				logger.Error("server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = obs.WithLogger(ctx, logger)

	if !cfg.EnvFileLoaded {
		logger.Info("no .env file found, using environment variables")
	}

	provider, err := ors.NewProvider(cfg.ORS)
	if err != nil {
		return err
	}

	routeCache, closeCache, err := openRouteCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	datasetRepo := repositories.NewFileDatasetRepository(filepath.Join(cfg.Dataset.Dir, cfg.Dataset.File))
	if ds, err := datasetRepo.Load(ctx); err != nil {
		logger.Warn("dataset not available yet", zap.String("path", datasetRepo.Path), zap.Error(err))
	} else {
		logger.Info("dataset loaded",
			zap.String("run_id", ds.Meta.RunID),
			zap.Int("n_locations", ds.Meta.NLocations),
			zap.Time("generated_at", ds.Meta.GeneratedAt),
		)
	}

	resolver := services.NewRouteResolver(provider, routeCache, provider.Profile())

	staticDir := cfg.Server.StaticDir
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
			logger.Warn("static dir not found, serving API only", zap.String("static_dir", staticDir))
			staticDir = ""
		}
	}

	router := api.NewRouter(api.Deps{
		Logger:    logger,
		Dataset:   datasetRepo,
		Resolver:  resolver,
		StaticDir: staticDir,
	})

	// Timeouts leave room for a full directions call (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("cache", cfg.Cache.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openRouteCache returns the configured cache, or nil when caching is off.
func openRouteCache(ctx context.Context, cfg *config.Config) (ports.RouteCache, func(), error) {
	logger := obs.FromContext(ctx)

	switch cfg.Cache.Backend {
	case config.CacheRedis:
		client, err := kv.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("route cache enabled", zap.String("backend", "redis"), zap.Duration("ttl", cfg.Cache.TTL))
		return cache.NewRedisRouteCache(client, cfg.Cache.TTL), func() { _ = client.Close() }, nil

	case config.CachePostgres:
		pool, err := db.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		c := cache.NewSQLRouteCache(pool, cfg.Cache.TTL)
		if err := c.InitSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("route cache enabled", zap.String("backend", "postgres"), zap.Duration("ttl", cfg.Cache.TTL))
		return c, pool.Close, nil

	default:
		return nil, func() {}, nil
	}
}
