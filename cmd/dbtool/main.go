package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hospital-route-service/internal/adapters/cache"
	"hospital-route-service/internal/config"
	"hospital-route-service/internal/platform/db"
	"hospital-route-service/internal/platform/obs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Manage the Postgres route cache.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the route cache table and index.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd.Context(), func(ctx context.Context, c *cache.SQLRouteCache) error {
				if err := c.InitSchema(ctx); err != nil {
					return err
				}
				obs.FromContext(ctx).Info("schema ready")
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete route cache entries older than cache.ttl.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd.Context(), func(ctx context.Context, c *cache.SQLRouteCache) error {
				n, err := c.Purge(ctx)
				if err != nil {
					return err
				}
				obs.FromContext(ctx).Info("purged expired routes", zap.Int64("rows", n))
				return nil
			})
		},
	})

	return root
}

func withCache(ctx context.Context, fn func(context.Context, *cache.SQLRouteCache) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	logger := obs.NewLogger(cfg.Logger)
	defer func() { _ = logger.Sync() }()
	ctx = obs.WithLogger(ctx, logger)

	pool, err := db.Open(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Error("connect failed", zap.Error(err))
		return err
	}
	defer pool.Close()

	if err := fn(ctx, cache.NewSQLRouteCache(pool, cfg.Cache.TTL)); err != nil {
		logger.Error("command failed", zap.Error(err))
		return err
	}
	return nil
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
