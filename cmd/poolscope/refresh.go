package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolscope/internal/config"
	"poolscope/internal/fetcher"
	"poolscope/internal/pipeline"
	"poolscope/internal/resolver"
	"poolscope/internal/storage/postgres"
	"poolscope/internal/upstream"
)

const (
	rawCacheFile      = "coingecko_full_data_cache.csv"
	metadataCacheFile = "defillama_metadata_cache.csv"
)

func runRefresh(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRefresh(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Venue == "" {
		return fmt.Errorf("venue is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rawCachePath := filepath.Join(cfg.CacheDir, rawCacheFile)
	metadataCachePath := filepath.Join(cfg.CacheDir, metadataCacheFile)
	fullOutputPath := filepath.Join(cfg.DataDir, fmt.Sprintf("%s_full_refined.csv", cfg.Venue))
	topOutputPath := filepath.Join(cfg.DataDir, fmt.Sprintf("%s_top%d_pools.csv", cfg.Venue, cfg.Top))

	fetchRunner := fetcher.NewRunner(fetcher.RunConfig{
		Venue:         cfg.Venue,
		PageSize:      cfg.PageSize,
		PageDelay:     cfg.RequestDelay,
		RateLimitWait: cfg.RateLimitWait,
		CachePath:     rawCachePath,
		CacheHashPath: rawCachePath + ".hash",
		UseCache:      cfg.UseCache,
		ForceRefresh:  cfg.ForceRefresh,
	}, upstream.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.Timeout, logger), logger)

	metaResolver := resolver.NewResolver(resolver.RunConfig{
		BatchSize:     cfg.BatchSize,
		BatchDelay:    cfg.RequestDelay,
		RateLimitWait: cfg.RateLimitWait,
		CachePath:     metadataCachePath,
		CacheHashPath: metadataCachePath + ".hash",
		UseCache:      cfg.UseCache,
		ForceRefresh:  cfg.ForceRefresh,
	}, upstream.NewDefiLlamaClient(cfg.DefiLlamaURL, cfg.Timeout, logger), logger)

	var sink pipeline.Sink
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sink = store
	}

	run := pipeline.New(pipeline.Config{
		FullOutputPath: fullOutputPath,
		FullHashPath:   fullOutputPath + ".hash",
		TopOutputPath:  topOutputPath,
		TopHashPath:    topOutputPath + ".hash",
		TopN:           cfg.Top,
	}, fetchRunner, metaResolver, sink, logger)

	logger.Info("refresh start",
		zap.String("venue", cfg.Venue),
		zap.Int("page_size", cfg.PageSize),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Duration("request_delay", cfg.RequestDelay),
		zap.String("cache_dir", cfg.CacheDir),
		zap.String("data_dir", cfg.DataDir),
		zap.Bool("use_cache", cfg.UseCache),
		zap.Bool("force_refresh", cfg.ForceRefresh),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	return run.Run(ctx)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
