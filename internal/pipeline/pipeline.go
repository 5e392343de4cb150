package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"poolscope/internal/fetcher"
	"poolscope/internal/model"
	"poolscope/internal/refine"
	"poolscope/internal/resolver"
	"poolscope/internal/storage"
)

// Sink receives the refined dataset in addition to the CSV artifacts.
type Sink interface {
	UpsertRefinedPools(ctx context.Context, pools []model.RefinedPool) error
}

// Config holds output locations for the refresh run.
type Config struct {
	FullOutputPath string
	FullHashPath   string
	TopOutputPath  string
	TopHashPath    string
	TopN           int
}

// Pipeline runs one refresh cycle: fetch tickers, resolve token metadata,
// derive the refined dataset, and persist the artifacts.
type Pipeline struct {
	cfg      Config
	fetcher  *fetcher.Runner
	resolver *resolver.Resolver
	sink     Sink
	logger   *zap.Logger
}

func New(cfg Config, f *fetcher.Runner, r *resolver.Resolver, sink Sink, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, fetcher: f, resolver: r, sink: sink, logger: logger}
}

// Run executes the refresh cycle. Upstream failures degrade to a smaller
// dataset; Run only fails on cancellation or persistence errors.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.fetcher == nil {
		return fmt.Errorf("fetcher is nil")
	}
	if p.resolver == nil {
		return fmt.Errorf("resolver is nil")
	}
	if p.cfg.TopN <= 0 {
		return fmt.Errorf("top n must be greater than zero")
	}

	fetched, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch tickers: %w", err)
	}
	for _, warning := range fetched.Warnings {
		p.logger.Warn("fetch warning", zap.String("warning", warning))
	}
	if len(fetched.Pools) == 0 {
		p.logger.Warn("no ticker data available, nothing to refine")
		return nil
	}

	addresses := collectAddresses(fetched.Pools)
	p.logger.Info("unique token identifiers collected", zap.Int("count", len(addresses)))

	resolved, err := p.resolver.Resolve(ctx, addresses)
	if err != nil {
		return fmt.Errorf("resolve metadata: %w", err)
	}
	for _, warning := range resolved.Warnings {
		p.logger.Warn("resolve warning", zap.String("warning", warning))
	}
	if len(resolved.Tokens) == 0 {
		p.logger.Warn("no metadata available, skipping integration",
			zap.Int("requested", resolved.Requested),
		)
		return nil
	}

	refined := refine.Refine(fetched.Pools, resolved.Tokens)
	top := refine.TopByVolume(refined, p.cfg.TopN)

	fullOutcome, err := storage.SaveIfChanged(model.RefinedPoolTable(refined), p.cfg.FullOutputPath, p.cfg.FullHashPath)
	if err != nil {
		return fmt.Errorf("save full dataset: %w", err)
	}
	p.logger.Info("full dataset", zap.String("path", p.cfg.FullOutputPath), zap.Stringer("outcome", fullOutcome))

	topOutcome, err := storage.SaveIfChanged(model.RefinedPoolTable(top), p.cfg.TopOutputPath, p.cfg.TopHashPath)
	if err != nil {
		return fmt.Errorf("save top dataset: %w", err)
	}
	p.logger.Info("top dataset", zap.String("path", p.cfg.TopOutputPath), zap.Stringer("outcome", topOutcome))

	if p.sink != nil {
		if err := p.sink.UpsertRefinedPools(ctx, refined); err != nil {
			return fmt.Errorf("upsert refined pools: %w", err)
		}
		p.logger.Info("refined pools upserted", zap.Int("rows", len(refined)))
	}

	p.logSummary(top)
	return nil
}

// collectAddresses gathers the unique base and target identifiers; the
// resolver decides which of them are contract addresses.
func collectAddresses(pools []model.PoolTicker) []string {
	seen := make(map[string]struct{}, len(pools)*2)
	out := make([]string, 0, len(pools)*2)
	for _, p := range pools {
		for _, value := range []string{p.Base, p.Target} {
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			out = append(out, value)
		}
	}
	return out
}

func (p *Pipeline) logSummary(top []model.RefinedPool) {
	if len(top) == 0 {
		return
	}

	minVolume := top[0].VolumeUSD
	maxVolume := top[0].VolumeUSD
	scoreSum := 0.0
	grades := map[string]int{}
	for _, pool := range top {
		if pool.VolumeUSD < minVolume {
			minVolume = pool.VolumeUSD
		}
		if pool.VolumeUSD > maxVolume {
			maxVolume = pool.VolumeUSD
		}
		scoreSum += pool.LiquidityScore
		grades[pool.TrustGrade]++
	}

	p.logger.Info("refresh summary",
		zap.Int("top_pools", len(top)),
		zap.Float64("min_volume_usd", minVolume),
		zap.Float64("max_volume_usd", maxVolume),
		zap.Float64("avg_liquidity_score", scoreSum/float64(len(top))),
		zap.Int("grade_a", grades["A"]),
		zap.Int("grade_b", grades["B"]),
		zap.Int("grade_c", grades["C"]),
		zap.Int("grade_d", grades["D"]),
	)
}
