package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"poolscope/internal/model"
	"poolscope/internal/storage"
	"poolscope/internal/upstream"
)

func testConfig(t *testing.T) RunConfig {
	t.Helper()
	cachePath := filepath.Join(t.TempDir(), "metadata.csv")
	return RunConfig{
		BatchSize:     50,
		BatchDelay:    time.Millisecond,
		RateLimitWait: 5 * time.Millisecond,
		CachePath:     cachePath,
		CacheHashPath: cachePath + ".hash",
	}
}

func requestKeys(r *http.Request) []string {
	raw := strings.TrimPrefix(r.URL.Path, "/prices/current/")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func writeCoins(w http.ResponseWriter, keys []string) {
	coins := make(map[string]map[string]interface{}, len(keys))
	for i, key := range keys {
		coins[key] = map[string]interface{}{
			"symbol":   fmt.Sprintf("TKN%d", i),
			"decimals": 18,
			"price":    1.5,
		}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"coins": coins})
}

func addressFixture(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("0x%040x", i+1)
	}
	return out
}

func TestResolveFiltersNonAddresses(t *testing.T) {
	var gotKeys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKeys = requestKeys(r)
		writeCoins(w, gotKeys)
	}))
	defer server.Close()

	client := upstream.NewDefiLlamaClient(server.URL, time.Second, nil)
	r := NewResolver(testConfig(t), client, nil)

	input := []string{
		"USDC",
		"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		"0xnothex",
	}
	result, err := r.Resolve(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"ethereum:0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"}
	if len(gotKeys) != 1 || gotKeys[0] != want[0] {
		t.Fatalf("request keys = %v, want %v", gotKeys, want)
	}
	if result.Requested != 1 {
		t.Fatalf("requested = %d, want 1", result.Requested)
	}
	if len(result.Tokens) != 1 {
		t.Fatalf("resolved %d tokens, want 1", len(result.Tokens))
	}
	token := result.Tokens[0]
	if token.Address != "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2" {
		t.Fatalf("address = %q, want lower-cased form", token.Address)
	}
	if token.Symbol == nil || *token.Symbol != "TKN0" {
		t.Fatalf("symbol = %v, want TKN0", token.Symbol)
	}
	if token.Decimals == nil || *token.Decimals != 18 {
		t.Fatalf("decimals = %v, want 18", token.Decimals)
	}
}

func TestResolveEmptyAfterFiltering(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL)
	}))
	defer server.Close()

	client := upstream.NewDefiLlamaClient(server.URL, time.Second, nil)
	r := NewResolver(testConfig(t), client, nil)

	result, err := r.Resolve(context.Background(), []string{"USDC", "WETH"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Requested != 0 || len(result.Tokens) != 0 {
		t.Fatalf("result = %+v, want empty with zero requested", result)
	}
}

func TestResolvePartitionsBatches(t *testing.T) {
	var batchSizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys := requestKeys(r)
		batchSizes = append(batchSizes, len(keys))
		writeCoins(w, keys)
	}))
	defer server.Close()

	client := upstream.NewDefiLlamaClient(server.URL, time.Second, nil)
	r := NewResolver(testConfig(t), client, nil)

	result, err := r.Resolve(context.Background(), addressFixture(120))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batchSizes) != 3 {
		t.Fatalf("made %d requests, want 3", len(batchSizes))
	}
	if batchSizes[0] != 50 || batchSizes[1] != 50 || batchSizes[2] != 20 {
		t.Fatalf("batch sizes = %v, want [50 50 20]", batchSizes)
	}
	if len(result.Tokens) != 120 {
		t.Fatalf("resolved %d tokens, want 120", len(result.Tokens))
	}
}

func TestResolveRetriesRateLimitedBatch(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeCoins(w, requestKeys(r))
	}))
	defer server.Close()

	client := upstream.NewDefiLlamaClient(server.URL, time.Second, nil)
	r := NewResolver(testConfig(t), client, nil)

	result, err := r.Resolve(context.Background(), addressFixture(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 2 {
		t.Fatalf("made %d requests, want 2", requests)
	}
	if len(result.Tokens) != 10 {
		t.Fatalf("resolved %d tokens, want 10 without loss or duplication", len(result.Tokens))
	}
}

func TestResolveContinuesAfterFailedBatch(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeCoins(w, requestKeys(r))
	}))
	defer server.Close()

	client := upstream.NewDefiLlamaClient(server.URL, time.Second, nil)
	r := NewResolver(testConfig(t), client, nil)

	result, err := r.Resolve(context.Background(), addressFixture(150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 3 {
		t.Fatalf("made %d requests, want 3", requests)
	}
	if len(result.Tokens) != 100 {
		t.Fatalf("resolved %d tokens, want 100 from the surviving batches", len(result.Tokens))
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one entry", result.Warnings)
	}
}

func TestResolveUsesCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.UseCache = true

	symbol := "WETH"
	tokens := []model.TokenMetadata{
		{Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", Symbol: &symbol},
	}
	if _, err := storage.SaveIfChanged(model.TokenMetadataTable(tokens), cfg.CachePath, cfg.CacheHashPath); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL)
	}))
	defer server.Close()

	client := upstream.NewDefiLlamaClient(server.URL, time.Second, nil)
	r := NewResolver(cfg, client, nil)

	result, err := r.Resolve(context.Background(), []string{"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.FromCache {
		t.Fatalf("expected cache hit")
	}
	if len(result.Tokens) != 1 {
		t.Fatalf("cached result has %d tokens, want 1", len(result.Tokens))
	}
}
