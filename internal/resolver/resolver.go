package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"poolscope/internal/model"
	"poolscope/internal/storage"
	"poolscope/internal/upstream"
)

const memoTTL = time.Hour

// RunConfig holds runtime settings for metadata resolution.
type RunConfig struct {
	Chain         string
	BatchSize     int
	BatchDelay    time.Duration
	RateLimitWait time.Duration
	CachePath     string
	CacheHashPath string
	UseCache      bool
	ForceRefresh  bool
}

// Result carries resolved token rows. Requested distinguishes "no addresses
// to look up" from "lookups were made but nothing resolved".
type Result struct {
	Tokens    []model.TokenMetadata
	Requested int
	FromCache bool
	Warnings  []string
}

// Resolver turns on-chain token addresses into symbol/decimals/price rows via
// batched lookups, with an in-process memo in front of the network.
type Resolver struct {
	cfg    RunConfig
	client *upstream.DefiLlamaClient
	memo   *gocache.Cache
	logger *zap.Logger
}

func NewResolver(cfg RunConfig, client *upstream.DefiLlamaClient, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Chain == "" {
		cfg.Chain = "ethereum"
	}
	return &Resolver{
		cfg:    cfg,
		client: client,
		memo:   gocache.New(memoTTL, 2*memoTTL),
		logger: logger,
	}
}

// Resolve looks up metadata for every address-shaped input. Failed batches
// are reported as warnings and do not abort resolution of later batches.
func (r *Resolver) Resolve(ctx context.Context, addresses []string) (Result, error) {
	if r.client == nil {
		return Result{}, fmt.Errorf("defillama client is nil")
	}
	if r.cfg.BatchSize <= 0 {
		return Result{}, fmt.Errorf("batch size must be greater than zero")
	}

	if r.cfg.UseCache && !r.cfg.ForceRefresh {
		if result, ok := r.loadCache(); ok {
			return result, nil
		}
	}

	filtered := filterAddresses(addresses)
	if len(filtered) == 0 {
		r.logger.Info("no contract addresses to resolve")
		return Result{}, nil
	}

	result := Result{Requested: len(filtered)}
	pending := make([]string, 0, len(filtered))
	for _, addr := range filtered {
		if cached, ok := r.memo.Get(addr); ok {
			result.Tokens = append(result.Tokens, cached.(model.TokenMetadata))
			continue
		}
		pending = append(pending, addr)
	}
	if len(result.Tokens) > 0 {
		r.logger.Info("metadata memo hits", zap.Int("tokens", len(result.Tokens)))
	}

	r.logger.Info("resolve start",
		zap.Int("addresses", len(filtered)),
		zap.Int("pending", len(pending)),
		zap.Int("batch_size", r.cfg.BatchSize),
	)

	limiter := rate.NewLimiter(rate.Every(r.cfg.BatchDelay), 1)
	batches := (len(pending) + r.cfg.BatchSize - 1) / r.cfg.BatchSize

	for i := 0; i < len(pending); i += r.cfg.BatchSize {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		end := i + r.cfg.BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[i:end]
		batchNum := i/r.cfg.BatchSize + 1

		tokens, err := r.resolveBatch(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			r.logger.Warn("batch failed, continuing",
				zap.Int("batch", batchNum),
				zap.Int("batches", batches),
				zap.Error(err),
			)
			result.Warnings = append(result.Warnings, fmt.Sprintf("batch %d/%d: %v", batchNum, batches, err))
			continue
		}

		r.logger.Info("batch resolved",
			zap.Int("batch", batchNum),
			zap.Int("batches", batches),
			zap.Int("tokens", len(tokens)),
		)
		for _, token := range tokens {
			r.memo.SetDefault(token.Address, token)
			result.Tokens = append(result.Tokens, token)
		}

		if end < len(pending) {
			if err := limiter.Wait(ctx); err != nil {
				return result, err
			}
		}
	}

	if len(result.Tokens) == 0 {
		r.logger.Warn("no metadata resolved", zap.Int("requested", result.Requested))
		return result, nil
	}

	outcome, err := storage.SaveIfChanged(model.TokenMetadataTable(result.Tokens), r.cfg.CachePath, r.cfg.CacheHashPath)
	if err != nil {
		return result, fmt.Errorf("cache metadata: %w", err)
	}
	r.logger.Info("metadata cache updated",
		zap.String("path", r.cfg.CachePath),
		zap.Int("tokens", len(result.Tokens)),
		zap.Stringer("outcome", outcome),
	)
	return result, nil
}

// resolveBatch issues one lookup for a batch, retrying the same batch after a
// rate-limit response.
func (r *Resolver) resolveBatch(ctx context.Context, batch []string) ([]model.TokenMetadata, error) {
	keys := make([]string, len(batch))
	for i, addr := range batch {
		keys[i] = r.cfg.Chain + ":" + addr
	}

	for {
		coins, err := r.client.CurrentPrices(ctx, keys)
		if err != nil {
			if upstream.IsRateLimited(err) {
				r.logger.Warn("rate limited, backing off", zap.Duration("wait", r.cfg.RateLimitWait))
				if waitErr := upstream.Wait(ctx, r.cfg.RateLimitWait); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, err
		}

		tokens := make([]model.TokenMetadata, 0, len(coins))
		for key, coin := range coins {
			addr := key
			if sep := strings.IndexByte(key, ':'); sep >= 0 {
				addr = key[sep+1:]
			}
			tokens = append(tokens, model.TokenMetadata{
				Address:  strings.ToLower(addr),
				Symbol:   coin.Symbol,
				Decimals: coin.Decimals,
				Price:    coin.Price,
			})
		}
		// Response maps are unordered; keep the persisted table deterministic.
		sort.Slice(tokens, func(i, j int) bool { return tokens[i].Address < tokens[j].Address })
		return tokens, nil
	}
}

func (r *Resolver) loadCache() (Result, bool) {
	table, err := storage.ReadTable(r.cfg.CachePath)
	if err != nil {
		return Result{}, false
	}
	tokens, err := model.TokenMetadataFromTable(table)
	if err != nil {
		r.logger.Warn("cached metadata unreadable, refetching", zap.String("path", r.cfg.CachePath), zap.Error(err))
		return Result{}, false
	}
	r.logger.Info("loaded cached metadata", zap.String("path", r.cfg.CachePath), zap.Int("tokens", len(tokens)))
	return Result{Tokens: tokens, Requested: len(tokens), FromCache: true}, true
}

// filterAddresses keeps only 0x-prefixed contract addresses, lower-cased,
// deduplicated, and sorted for stable batch partitioning.
func filterAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		trimmed := strings.TrimSpace(addr)
		if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
			continue
		}
		if !common.IsHexAddress(trimmed) {
			continue
		}
		lowered := strings.ToLower(trimmed)
		if _, ok := seen[lowered]; ok {
			continue
		}
		seen[lowered] = struct{}{}
		out = append(out, lowered)
	}
	sort.Strings(out)
	return out
}
