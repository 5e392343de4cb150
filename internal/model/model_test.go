package model

import (
	"reflect"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func stringPtr(v string) *string  { return &v }

func TestPoolTickerTableRoundTrip(t *testing.T) {
	pools := []PoolTicker{
		{
			Page:            1,
			Base:            "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			Target:          "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			LastPrice:       floatPtr(3512.42),
			VolumeUSD:       1234567.89,
			BidAskSpreadPct: floatPtr(0.06),
			TrustScore:      stringPtr("green"),
			Market:          "Uniswap V3 (Ethereum)",
			CoinID:          "weth",
			TargetCoinID:    "usd-coin",
		},
		{
			Page:      3,
			Base:      "USDT",
			Target:    "0x6b175474e89094c44da98b954eedeac495271d0f",
			VolumeUSD: 0,
			Market:    "Uniswap V3 (Ethereum)",
		},
	}

	got, err := PoolTickersFromTable(PoolTickerTable(pools))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, pools) {
		t.Fatalf("round trip mismatch: %+v != %+v", got, pools)
	}
}

func TestPoolTickersFromTableMissingColumn(t *testing.T) {
	table := PoolTickerTable([]PoolTicker{{Page: 1, VolumeUSD: 10}})
	table.Columns = table.Columns[:len(table.Columns)-1]
	table.Rows[0] = table.Rows[0][:len(table.Rows[0])-1]

	if _, err := PoolTickersFromTable(table); err == nil {
		t.Fatalf("expected error for missing column")
	}
}

func TestTokenMetadataTableRoundTrip(t *testing.T) {
	tokens := []TokenMetadata{
		{
			Address:  "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			Symbol:   stringPtr("WETH"),
			Decimals: intPtr(18),
			Price:    floatPtr(3512.42),
		},
		{
			Address: "0x0000000000000000000000000000000000000001",
		},
	}

	got, err := TokenMetadataFromTable(TokenMetadataTable(tokens))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, tokens) {
		t.Fatalf("round trip mismatch: %+v != %+v", got, tokens)
	}
}

func TestRefinedPoolRecordFormatsScore(t *testing.T) {
	pool := RefinedPool{
		PoolTicker:      PoolTicker{Page: 1, VolumeUSD: 500},
		BaseSymbol:      "WETH",
		TargetSymbol:    "USDC",
		TradingPair:     "WETH/USDC",
		VolumeFormatted: "$500",
		LiquidityScore:  99.5,
		TrustGrade:      "A",
	}

	record := pool.Record()
	if len(record) != len(RefinedPoolColumns) {
		t.Fatalf("record has %d cells, want %d", len(record), len(RefinedPoolColumns))
	}
	if record[12] != "99.50" {
		t.Fatalf("liquidity_score cell = %q, want 99.50", record[12])
	}
	if record[1] != "WETH" || record[2] != "USDC" {
		t.Fatalf("base/target cells = %q/%q, want resolved symbols", record[1], record[2])
	}
}
