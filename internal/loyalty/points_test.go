package loyalty

import (
	"context"
	"errors"
	"testing"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/shopspring/decimal"
)

type stubConverter struct {
	result   decimal.Decimal
	lastFrom domain.Currency
	lastTo   domain.Currency
	called   bool
}

func (s *stubConverter) Convert(_ context.Context, amount decimal.Decimal, from, to domain.Currency) decimal.Decimal {
	s.called = true
	s.lastFrom = from
	s.lastTo = to
	if s.result.IsZero() {
		return amount
	}
	return s.result
}

func TestPointsForPaymentBands(t *testing.T) {
	policy := NewPolicy(&stubConverter{})
	cases := map[int64]int{
		0:       20,
		14_999:  20,
		15_000:  50,
		49_999:  50,
		50_000:  100,
		99_999:  100,
		100_000: 150,
		149_999: 150,
		150_000: 300,
		299_999: 300,
		300_000: 500,
		499_999: 500,
		500_000: 1000,
		900_000: 1000,
	}
	for amount, want := range cases {
		got, err := policy.PointsForPayment(context.Background(), decimal.NewFromInt(amount), domain.XOF)
		if err != nil {
			t.Fatalf("amount=%d: unexpected error %v", amount, err)
		}
		if got != want {
			t.Errorf("amount=%d: expected %d points, got %d", amount, want, got)
		}
	}
}

func TestPointsForPaymentFractionalBoundary(t *testing.T) {
	policy := NewPolicy(&stubConverter{})
	got, err := policy.PointsForPayment(context.Background(), decimal.RequireFromString("14999.99"), domain.XOF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 20 {
		t.Fatalf("expected 20 points, got %d", got)
	}
}

func TestPointsForPaymentNegativeAmount(t *testing.T) {
	policy := NewPolicy(&stubConverter{})
	_, err := policy.PointsForPayment(context.Background(), decimal.NewFromInt(-1), domain.XOF)
	if !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestPointsForPaymentUnsupportedCurrency(t *testing.T) {
	conv := &stubConverter{}
	policy := NewPolicy(conv)
	_, err := policy.PointsForPayment(context.Background(), decimal.NewFromInt(100), domain.Currency("GBP"))
	if !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
	if conv.called {
		t.Fatalf("converter must not be called for unsupported currency")
	}
}

func TestPointsForPaymentForeignCurrencyConverts(t *testing.T) {
	// 100 EUR converted to 65 000 XOF lands in the 100-point band.
	conv := &stubConverter{result: decimal.NewFromInt(65_000)}
	policy := NewPolicy(conv)
	got, err := policy.PointsForPayment(context.Background(), decimal.NewFromInt(100), domain.EUR)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100 {
		t.Fatalf("expected 100 points, got %d", got)
	}
	if conv.lastFrom != domain.EUR || conv.lastTo != domain.XOF {
		t.Fatalf("expected EUR→XOF conversion, got %s→%s", conv.lastFrom, conv.lastTo)
	}
}

func TestPointsForPaymentBaseCurrencySkipsConversion(t *testing.T) {
	conv := &stubConverter{}
	policy := NewPolicy(conv)
	if _, err := policy.PointsForPayment(context.Background(), decimal.NewFromInt(1000), domain.XOF); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.called {
		t.Fatalf("converter must not be called for base currency")
	}
}
