package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/meloogk/O-Maillot-Backend/internal/loyalty"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public exchangerate-api endpoint.
const DefaultBaseURL = "https://v6.exchangerate-api.com"

// RateCache stores provider rates keyed by currency pair for a short TTL.
type RateCache interface {
	GetRate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, bool)
	SetRate(ctx context.Context, from, to domain.Currency, rate decimal.Decimal)
}

// Converter converts amounts between currencies through the external rate
// provider. Lookup failures of any kind fall back to the original amount:
// a conversion must never block a purchase flow.
type Converter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   RateCache
	logger  *log.Logger
}

var _ loyalty.Converter = (*Converter)(nil)

// New builds a Converter. cache may be nil to disable rate caching.
func New(baseURL, apiKey string, timeout time.Duration, cache RateCache, logger *log.Logger) *Converter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Converter{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		logger:  logger,
	}
}

type pairResponse struct {
	Result           string          `json:"result"`
	ConversionResult decimal.Decimal `json:"conversion_result"`
}

// Convert returns the provider-computed amount in the target currency, or
// the original amount when the lookup fails. Same-currency conversions
// short-circuit.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to domain.Currency) decimal.Decimal {
	if from == to {
		return amount
	}

	if c.cache != nil {
		if rate, ok := c.cache.GetRate(ctx, from, to); ok {
			return amount.Mul(rate)
		}
	}

	url := fmt.Sprintf("%s/v6/%s/pair/%s/%s/%s", c.baseURL, c.apiKey, from, to, amount.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.fallback(amount, from, to, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.fallback(amount, from, to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.fallback(amount, from, to, fmt.Errorf("provider status %d", resp.StatusCode))
	}

	var body pairResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return c.fallback(amount, from, to, err)
	}
	if body.Result != "success" {
		return c.fallback(amount, from, to, fmt.Errorf("provider result %q", body.Result))
	}

	if c.cache != nil && !amount.IsZero() {
		c.cache.SetRate(ctx, from, to, body.ConversionResult.Div(amount))
	}
	return body.ConversionResult
}

func (c *Converter) fallback(amount decimal.Decimal, from, to domain.Currency, err error) decimal.Decimal {
	if c.logger != nil {
		c.logger.Printf("currency conversion %s→%s failed, keeping original amount: %v", from, to, err)
	}
	return amount
}
