// Package quotes resolves live price quotes from an IEX-style HTTP API,
// with an optional Redis cache in front to keep repeated lookups off the
// provider. Every failure mode surfaces as ErrUnavailable; callers decide
// how to degrade.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/MitulMistry/paper-trader/internal/common"
	"github.com/MitulMistry/paper-trader/internal/config"
	"github.com/MitulMistry/paper-trader/internal/models"
)

// ErrUnavailable is returned when a quote cannot be resolved for any reason:
// unknown symbol, provider outage, malformed response.
var ErrUnavailable = errors.New("quote unavailable")

// Client fetches quotes over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *redis.Client
	cacheTTL   time.Duration
	log        *common.Logger
}

// NewClient creates a quote client. cache may be nil to disable caching.
func NewClient(cfg config.QuotesConfig, cache *redis.Client, log *common.Logger) *Client {
	if log == nil {
		log = common.NewLogger("info")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		cache:      cache,
		cacheTTL:   cfg.CacheTTL,
		log:        log.Component("quotes"),
	}
}

// quoteResponse mirrors the provider's quote payload.
type quoteResponse struct {
	CompanyName   string  `json:"companyName"`
	Symbol        string  `json:"symbol"`
	LatestPrice   float64 `json:"latestPrice"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Lookup resolves the latest quote for symbol, consulting the cache first.
func (c *Client) Lookup(ctx context.Context, symbol string) (*models.Quote, error) {
	cacheKey := "quote:" + symbol

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey).Result(); err == nil {
			var quote models.Quote
			if err := json.Unmarshal([]byte(cached), &quote); err == nil {
				return &quote, nil
			}
		}
	}

	reqURL := fmt.Sprintf("%s/stock/%s/quote?token=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if body.Symbol == "" || body.LatestPrice <= 0 {
		return nil, fmt.Errorf("%w: incomplete quote for %q", ErrUnavailable, symbol)
	}

	// Prices are rounded to the cent here so the cash a trade moves always
	// matches the per-share price persisted on the transaction row.
	quote := &models.Quote{
		Symbol:        body.Symbol,
		Name:          body.CompanyName,
		Price:         decimal.NewFromFloat(body.LatestPrice).Round(2),
		Change:        decimal.NewFromFloat(body.Change),
		ChangePercent: decimal.NewFromFloat(body.ChangePercent),
	}

	if c.cache != nil {
		if data, err := json.Marshal(quote); err == nil {
			if err := c.cache.Set(ctx, cacheKey, data, c.cacheTTL).Err(); err != nil {
				c.log.Warn().Str("symbol", symbol).Err(err).Msg("failed to cache quote")
			}
		}
	}

	return quote, nil
}
