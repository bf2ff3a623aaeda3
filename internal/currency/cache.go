package currency

import (
	"context"
	"time"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisRateCache keeps provider rates in Redis for a short TTL so that a
// multi-line checkout does not hit the rate provider once per line item.
type RedisRateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ RateCache = (*RedisRateCache)(nil)

// NewRedisRateCache builds a cache around an existing client.
func NewRedisRateCache(rdb *redis.Client, ttl time.Duration) *RedisRateCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisRateCache{rdb: rdb, ttl: ttl}
}

func rateKey(from, to domain.Currency) string {
	return "rate:" + string(from) + ":" + string(to)
}

// GetRate returns the cached pair rate, if present and parseable.
func (c *RedisRateCache) GetRate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, bool) {
	val, err := c.rdb.Get(ctx, rateKey(from, to)).Result()
	if err != nil {
		return decimal.Decimal{}, false
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return rate, true
}

// SetRate stores the pair rate. A write failure only costs a future lookup.
func (c *RedisRateCache) SetRate(ctx context.Context, from, to domain.Currency, rate decimal.Decimal) {
	c.rdb.Set(ctx, rateKey(from, to), rate.String(), c.ttl)
}
