package fetcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"poolscope/internal/model"
	"poolscope/internal/storage"
	"poolscope/internal/upstream"
)

// RunConfig holds runtime settings for the ticker fetch loop.
type RunConfig struct {
	Venue         string
	PageSize      int
	PageDelay     time.Duration
	RateLimitWait time.Duration
	CachePath     string
	CacheHashPath string
	UseCache      bool
	ForceRefresh  bool
}

// Result carries whatever the fetch gathered. Transport failures never abort
// the run; they are reported in Warnings alongside the partial dataset.
type Result struct {
	Pools     []model.PoolTicker
	Pages     int
	FromCache bool
	Warnings  []string
}

// Runner pages through the upstream ticker endpoint until exhaustion.
type Runner struct {
	cfg    RunConfig
	client *upstream.CoinGeckoClient
	logger *zap.Logger
}

func NewRunner(cfg RunConfig, client *upstream.CoinGeckoClient, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, client: client, logger: logger}
}

// Fetch returns all pool tickers, either from the on-disk cache or by paging
// through the API. The returned error is only a context or persistence
// failure; upstream errors terminate the loop early and surface as warnings.
func (r *Runner) Fetch(ctx context.Context) (Result, error) {
	if r.client == nil {
		return Result{}, fmt.Errorf("coingecko client is nil")
	}
	if r.cfg.Venue == "" {
		return Result{}, fmt.Errorf("venue is required")
	}
	if r.cfg.PageSize <= 0 {
		return Result{}, fmt.Errorf("page size must be greater than zero")
	}

	if r.cfg.UseCache && !r.cfg.ForceRefresh {
		if result, ok := r.loadCache(); ok {
			return result, nil
		}
	}

	r.logger.Info("fetch start", zap.String("venue", r.cfg.Venue), zap.Int("page_size", r.cfg.PageSize))

	limiter := rate.NewLimiter(rate.Every(r.cfg.PageDelay), 1)
	result := Result{}
	page := 1

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		tickers, err := r.client.Tickers(ctx, r.cfg.Venue, page, r.cfg.PageSize)
		if err != nil {
			if upstream.IsRateLimited(err) {
				r.logger.Warn("rate limited, backing off",
					zap.Int("page", page),
					zap.Duration("wait", r.cfg.RateLimitWait),
				)
				if waitErr := upstream.Wait(ctx, r.cfg.RateLimitWait); waitErr != nil {
					return result, waitErr
				}
				continue
			}
			r.logger.Warn("fetch page failed, stopping", zap.Int("page", page), zap.Error(err))
			result.Warnings = append(result.Warnings, fmt.Sprintf("page %d: %v", page, err))
			break
		}

		for _, t := range tickers {
			result.Pools = append(result.Pools, tickerToPool(page, t))
		}
		result.Pages = page
		r.logger.Info("page fetched", zap.Int("page", page), zap.Int("tickers", len(tickers)))

		if len(tickers) == 0 {
			r.logger.Info("empty page, last page reached", zap.Int("page", page))
			break
		}
		if len(tickers) < r.cfg.PageSize {
			r.logger.Info("partial page, last page reached",
				zap.Int("page", page),
				zap.Int("tickers", len(tickers)),
			)
			break
		}

		page++
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}
	}

	if len(result.Pools) > 0 {
		outcome, err := storage.SaveIfChanged(model.PoolTickerTable(result.Pools), r.cfg.CachePath, r.cfg.CacheHashPath)
		if err != nil {
			return result, fmt.Errorf("cache tickers: %w", err)
		}
		r.logger.Info("ticker cache updated", zap.String("path", r.cfg.CachePath), zap.Stringer("outcome", outcome))
	}

	r.logSummary(result)
	return result, nil
}

func (r *Runner) loadCache() (Result, bool) {
	table, err := storage.ReadTable(r.cfg.CachePath)
	if err != nil {
		return Result{}, false
	}
	pools, err := model.PoolTickersFromTable(table)
	if err != nil {
		r.logger.Warn("cached tickers unreadable, refetching", zap.String("path", r.cfg.CachePath), zap.Error(err))
		return Result{}, false
	}

	pages := 0
	for _, p := range pools {
		if p.Page > pages {
			pages = p.Page
		}
	}
	r.logger.Info("loaded cached tickers",
		zap.String("path", r.cfg.CachePath),
		zap.Int("pools", len(pools)),
		zap.Int("pages", pages),
	)
	return Result{Pools: pools, Pages: pages, FromCache: true}, true
}

func (r *Runner) logSummary(result Result) {
	if len(result.Pools) == 0 {
		r.logger.Info("fetch complete, no pools")
		return
	}

	minVolume := result.Pools[0].VolumeUSD
	maxVolume := result.Pools[0].VolumeUSD
	for _, p := range result.Pools[1:] {
		if p.VolumeUSD < minVolume {
			minVolume = p.VolumeUSD
		}
		if p.VolumeUSD > maxVolume {
			maxVolume = p.VolumeUSD
		}
	}

	r.logger.Info("fetch complete",
		zap.Int("pages", result.Pages),
		zap.Int("pools", len(result.Pools)),
		zap.Float64("min_volume_usd", minVolume),
		zap.Float64("max_volume_usd", maxVolume),
		zap.Int("warnings", len(result.Warnings)),
	)
}

// tickerToPool normalizes one upstream ticker; a missing converted volume is
// coerced to zero so volume_usd is always defined.
func tickerToPool(page int, t upstream.Ticker) model.PoolTicker {
	volume := 0.0
	if t.ConvertedVolume.USD != nil {
		volume = *t.ConvertedVolume.USD
	}
	return model.PoolTicker{
		Page:            page,
		Base:            t.Base,
		Target:          t.Target,
		LastPrice:       t.Last,
		VolumeUSD:       volume,
		BidAskSpreadPct: t.BidAskSpreadPct,
		TrustScore:      t.TrustScore,
		Market:          t.Market.Name,
		CoinID:          t.CoinID,
		TargetCoinID:    t.TargetCoinID,
	}
}
