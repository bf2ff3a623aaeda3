package loyalty

import (
	"context"
	"errors"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeAmount is returned when the base-currency amount is negative.
	ErrNegativeAmount = errors.New("amount cannot be negative")
	// ErrUnsupportedCurrency is returned for currencies outside {XOF, EUR, USD}.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Converter converts an amount between currencies. Implementations never
// fail: on lookup trouble they return the original amount.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to domain.Currency) decimal.Decimal
}

// band awards points to amounts strictly below its upper bound (XOF).
type band struct {
	below  int64
	points int
}

var bands = []band{
	{below: 15_000, points: 20},
	{below: 50_000, points: 50},
	{below: 100_000, points: 100},
	{below: 150_000, points: 150},
	{below: 300_000, points: 300},
	{below: 500_000, points: 500},
}

// topBandPoints is awarded at or above the last band bound.
const topBandPoints = 1000

// Policy is the points accrual policy: a step function over the paid amount
// expressed in the base currency.
type Policy struct {
	converter Converter
}

// NewPolicy builds a Policy using the given converter for non-XOF amounts.
func NewPolicy(converter Converter) *Policy {
	return &Policy{converter: converter}
}

// PointsForPayment returns the integer point award for a paid amount.
func (p *Policy) PointsForPayment(ctx context.Context, amount decimal.Decimal, currency domain.Currency) (int, error) {
	if !currency.Supported() {
		return 0, ErrUnsupportedCurrency
	}
	base := amount
	if currency != domain.XOF {
		base = p.converter.Convert(ctx, amount, currency, domain.XOF)
	}
	if base.IsNegative() {
		return 0, ErrNegativeAmount
	}
	for _, b := range bands {
		if base.LessThan(decimal.NewFromInt(b.below)) {
			return b.points, nil
		}
	}
	return topBandPoints, nil
}
