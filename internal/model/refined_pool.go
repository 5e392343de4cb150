package model

import (
	"strconv"

	"poolscope/internal/storage"
)

// RefinedPool is a PoolTicker joined with resolved symbols and derived
// quality metrics. Rows are derived, never mutated in place.
type RefinedPool struct {
	PoolTicker

	BaseSymbol      string
	TargetSymbol    string
	TradingPair     string
	VolumeFormatted string
	LiquidityScore  float64
	TrustGrade      string
}

// RefinedPoolColumns is the persisted column order of the refined datasets.
// The base and target cells carry the resolved symbols, as the dashboard
// contract expects human-readable identifiers.
var RefinedPoolColumns = []string{
	"page",
	"base",
	"target",
	"last_price",
	"volume_usd",
	"bid_ask_spread",
	"trust_score",
	"market",
	"coin_id",
	"target_coin_id",
	"trading_pair",
	"volume_formatted",
	"liquidity_score",
	"trust_grade",
}

// Record renders the refined pool as one CSV row in RefinedPoolColumns order.
func (r RefinedPool) Record() []string {
	return []string{
		strconv.Itoa(r.Page),
		r.BaseSymbol,
		r.TargetSymbol,
		floatPtrCell(r.LastPrice),
		floatCell(r.VolumeUSD),
		floatPtrCell(r.BidAskSpreadPct),
		stringPtrCell(r.TrustScore),
		r.Market,
		r.CoinID,
		r.TargetCoinID,
		r.TradingPair,
		r.VolumeFormatted,
		strconv.FormatFloat(r.LiquidityScore, 'f', 2, 64),
		r.TrustGrade,
	}
}

// RefinedPoolTable converts refined rows into a storage table.
func RefinedPoolTable(pools []RefinedPool) storage.Table {
	t := storage.Table{Columns: RefinedPoolColumns}
	for _, p := range pools {
		t.Rows = append(t.Rows, p.Record())
	}
	return t
}
