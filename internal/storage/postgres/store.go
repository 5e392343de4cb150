package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolscope/internal/model"
)

// Store provides Postgres persistence for the refined dataset.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertRefinedPools inserts or updates refined pool rows keyed by market and
// trading pair.
func (s *Store) UpsertRefinedPools(ctx context.Context, pools []model.RefinedPool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pools {
		batch.Queue(`
			INSERT INTO refined_pools (
				market, trading_pair, base_symbol, target_symbol, page,
				last_price, volume_usd, bid_ask_spread, trust_score,
				coin_id, target_coin_id, volume_formatted, liquidity_score, trust_grade,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
			ON CONFLICT (market, trading_pair)
			DO UPDATE SET
				base_symbol = EXCLUDED.base_symbol,
				target_symbol = EXCLUDED.target_symbol,
				page = EXCLUDED.page,
				last_price = EXCLUDED.last_price,
				volume_usd = EXCLUDED.volume_usd,
				bid_ask_spread = EXCLUDED.bid_ask_spread,
				trust_score = EXCLUDED.trust_score,
				coin_id = EXCLUDED.coin_id,
				target_coin_id = EXCLUDED.target_coin_id,
				volume_formatted = EXCLUDED.volume_formatted,
				liquidity_score = EXCLUDED.liquidity_score,
				trust_grade = EXCLUDED.trust_grade,
				updated_at = now()
		`,
			p.Market,
			p.TradingPair,
			p.BaseSymbol,
			p.TargetSymbol,
			p.Page,
			p.LastPrice,
			p.VolumeUSD,
			p.BidAskSpreadPct,
			p.TrustScore,
			p.CoinID,
			p.TargetCoinID,
			p.VolumeFormatted,
			p.LiquidityScore,
			p.TrustGrade,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
