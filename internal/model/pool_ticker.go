package model

import (
	"fmt"
	"strconv"

	"poolscope/internal/storage"
)

// PoolTicker is one exchange-reported pool ticker row as fetched upstream.
// Base and Target hold the raw identifiers the API returned, either a
// 0x-prefixed contract address or a plain symbol.
type PoolTicker struct {
	Page            int
	Base            string
	Target          string
	LastPrice       *float64
	VolumeUSD       float64
	BidAskSpreadPct *float64
	TrustScore      *string
	Market          string
	CoinID          string
	TargetCoinID    string
}

// PoolTickerColumns is the persisted column order of the raw ticker cache.
var PoolTickerColumns = []string{
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
}

// Record renders the ticker as one CSV row in PoolTickerColumns order.
func (p PoolTicker) Record() []string {
	return []string{
		strconv.Itoa(p.Page),
		p.Base,
		p.Target,
		floatPtrCell(p.LastPrice),
		floatCell(p.VolumeUSD),
		floatPtrCell(p.BidAskSpreadPct),
		stringPtrCell(p.TrustScore),
		p.Market,
		p.CoinID,
		p.TargetCoinID,
	}
}

// PoolTickerTable converts tickers into a storage table.
func PoolTickerTable(pools []PoolTicker) storage.Table {
	t := storage.Table{Columns: PoolTickerColumns}
	for _, p := range pools {
		t.Rows = append(t.Rows, p.Record())
	}
	return t
}

// PoolTickersFromTable decodes a previously persisted raw ticker table.
func PoolTickersFromTable(t storage.Table) ([]PoolTicker, error) {
	idx, err := t.ColumnIndex(PoolTickerColumns)
	if err != nil {
		return nil, fmt.Errorf("pool ticker table: %w", err)
	}

	pools := make([]PoolTicker, 0, len(t.Rows))
	for i, row := range t.Rows {
		page, err := strconv.Atoi(row[idx["page"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse page: %w", i, err)
		}
		lastPrice, err := parseFloatPtrCell(row[idx["last_price"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse last_price: %w", i, err)
		}
		volume, err := parseFloatCell(row[idx["volume_usd"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse volume_usd: %w", i, err)
		}
		spread, err := parseFloatPtrCell(row[idx["bid_ask_spread"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse bid_ask_spread: %w", i, err)
		}

		pools = append(pools, PoolTicker{
			Page:            page,
			Base:            row[idx["base"]],
			Target:          row[idx["target"]],
			LastPrice:       lastPrice,
			VolumeUSD:       volume,
			BidAskSpreadPct: spread,
			TrustScore:      parseStringPtrCell(row[idx["trust_score"]]),
			Market:          row[idx["market"]],
			CoinID:          row[idx["coin_id"]],
			TargetCoinID:    row[idx["target_coin_id"]],
		})
	}
	return pools, nil
}
