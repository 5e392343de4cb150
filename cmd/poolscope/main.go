package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poolscope",
		Short:        "DEX liquidity pool screener",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch tickers, resolve token metadata, and write the refined datasets",
		RunE:  runRefresh,
	}

	refreshCmd.Flags().String("venue", "uniswap_v3", "exchange venue id on the ticker API")
	refreshCmd.Flags().String("coingecko-url", "", "ticker API root (defaults to the public API)")
	refreshCmd.Flags().String("defillama-url", "", "metadata API root (defaults to the public API)")
	refreshCmd.Flags().Int("page-size", 100, "tickers per page")
	refreshCmd.Flags().Int("batch-size", 50, "addresses per metadata lookup")
	refreshCmd.Flags().Duration("request-delay", 1200*time.Millisecond, "delay between successful requests")
	refreshCmd.Flags().Duration("rate-limit-wait", 60*time.Second, "backoff after a rate-limit response")
	refreshCmd.Flags().Duration("timeout", 10*time.Second, "per-request timeout")
	refreshCmd.Flags().Int("top", 100, "size of the top-by-volume dataset")
	refreshCmd.Flags().String("cache-dir", "./cache", "raw/metadata cache directory")
	refreshCmd.Flags().String("data-dir", "./data", "refined output directory")
	refreshCmd.Flags().Bool("use-cache", true, "load cached raw tables when present")
	refreshCmd.Flags().Bool("force-refresh", false, "ignore cached raw tables")
	refreshCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the refined dataset")
	refreshCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(refreshCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report how high-volume pools distribute across fetch pages",
		RunE:  runAnalyze,
	}

	analyzeCmd.Flags().String("in", "", "raw ticker cache CSV to analyze")
	analyzeCmd.Flags().StringSlice("threshold", nil, "volume thresholds in USD (comma-separated)")
	analyzeCmd.Flags().StringSlice("target", nil, "target capture percentages (comma-separated)")
	analyzeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(analyzeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
