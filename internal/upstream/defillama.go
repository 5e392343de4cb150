package upstream

import (
	"context"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// DefaultDefiLlamaURL is the public DefiLlama coins API root.
const DefaultDefiLlamaURL = "https://coins.llama.fi"

// CoinPrice is the metadata DefiLlama returns per chain:address key.
type CoinPrice struct {
	Symbol   *string  `json:"symbol"`
	Decimals *int     `json:"decimals"`
	Price    *float64 `json:"price"`
}

type pricesResponse struct {
	Coins map[string]CoinPrice `json:"coins"`
}

// DefiLlamaClient resolves token metadata in batched lookups.
type DefiLlamaClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

func NewDefiLlamaClient(baseURL string, timeout time.Duration, logger *zap.Logger) *DefiLlamaClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefiLlamaClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("defillama"),
	}
}

// CurrentPrices looks up current prices for a list of chain:address keys and
// returns the mapping keyed exactly as the API returned it.
func (c *DefiLlamaClient) CurrentPrices(ctx context.Context, keys []string) (map[string]CoinPrice, error) {
	url := c.baseURL + "/prices/current/" + strings.Join(keys, ",")
	c.logger.Debug("request current prices", zap.Int("keys", len(keys)))

	var resp pricesResponse
	if err := getJSON(ctx, c.client, url, c.timeout, &resp); err != nil {
		return nil, err
	}
	return resp.Coins, nil
}
