package upstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// DefaultCoinGeckoURL is the public CoinGecko API root.
const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// Ticker is one pool ticker as reported by the exchange tickers endpoint.
type Ticker struct {
	Base            string   `json:"base"`
	Target          string   `json:"target"`
	Last            *float64 `json:"last"`
	ConvertedVolume struct {
		USD *float64 `json:"usd"`
	} `json:"converted_volume"`
	BidAskSpreadPct *float64 `json:"bid_ask_spread_percentage"`
	TrustScore      *string  `json:"trust_score"`
	Market          struct {
		Name string `json:"name"`
	} `json:"market"`
	CoinID       string `json:"coin_id"`
	TargetCoinID string `json:"target_coin_id"`
}

type tickersResponse struct {
	Tickers []Ticker `json:"tickers"`
}

// CoinGeckoClient fetches exchange pool tickers page by page.
type CoinGeckoClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

func NewCoinGeckoClient(baseURL string, timeout time.Duration, logger *zap.Logger) *CoinGeckoClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoinGeckoClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("coingecko"),
	}
}

// Tickers requests one page of pool tickers for a venue.
func (c *CoinGeckoClient) Tickers(ctx context.Context, venue string, page, perPage int) ([]Ticker, error) {
	url := fmt.Sprintf("%s/exchanges/%s/tickers?page=%d&per_page=%d", c.baseURL, venue, page, perPage)
	c.logger.Debug("request tickers page", zap.String("url", url), zap.Int("page", page))

	var resp tickersResponse
	if err := getJSON(ctx, c.client, url, c.timeout, &resp); err != nil {
		return nil, err
	}
	return resp.Tickers, nil
}
