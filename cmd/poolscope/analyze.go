package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolscope/internal/analyze"
	"poolscope/internal/config"
	"poolscope/internal/model"
	"poolscope/internal/storage"
)

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadAnalyze(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if len(cfg.Thresholds) == 0 {
		return fmt.Errorf("at least one threshold is required")
	}

	table, err := storage.ReadTable(cfg.Input)
	if err != nil {
		return fmt.Errorf("load tickers: %w", err)
	}
	pools, err := model.PoolTickersFromTable(table)
	if err != nil {
		return fmt.Errorf("decode tickers: %w", err)
	}

	logger.Info("analyze start",
		zap.String("input", cfg.Input),
		zap.Int("pools", len(pools)),
		zap.Float64s("thresholds", cfg.Thresholds),
		zap.Float64s("targets", cfg.Targets),
	)

	for _, d := range analyze.DistributionByPage(pools, cfg.Thresholds) {
		d.Log(logger)
	}
	for _, target := range cfg.Targets {
		for _, c := range analyze.OptimalCutoff(pools, cfg.Thresholds, target) {
			c.Log(logger)
		}
	}

	return nil
}
