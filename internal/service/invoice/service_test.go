package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/shopspring/decimal"
)

type memoryInvoiceRepo struct {
	invoices  map[string]*domain.Invoice
	byPayment map[string]string
	nextID    int
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{invoices: map[string]*domain.Invoice{}, byPayment: map[string]string{}}
}

func (r *memoryInvoiceRepo) Create(_ context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	if _, ok := r.byPayment[inv.PaymentID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	r.nextID++
	inv.ID = fmt.Sprintf("inv-%d", r.nextID)
	inv.IssuedAt = time.Now()
	r.invoices[inv.ID] = &inv
	r.byPayment[inv.PaymentID] = inv.ID
	return &inv, nil
}

func (r *memoryInvoiceRepo) GetByID(_ context.Context, id string) (*domain.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (r *memoryInvoiceRepo) GetByPayment(_ context.Context, paymentID string) (*domain.Invoice, error) {
	id, ok := r.byPayment[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.invoices[id], nil
}

func (r *memoryInvoiceRepo) List(context.Context) ([]domain.Invoice, error) {
	var out []domain.Invoice
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, nil
}

func (r *memoryInvoiceRepo) NextSequence(_ context.Context, year int) (int, error) {
	prefix := fmt.Sprintf("FAC-%d-", year)
	n := 0
	for _, inv := range r.invoices {
		if strings.HasPrefix(inv.Number, prefix) {
			n++
		}
	}
	return n + 1, nil
}

type stubPaymentRepo struct {
	payments map[string]*domain.Payment
}

func (r *stubPaymentRepo) Create(_ context.Context, p domain.Payment, _ int) (*domain.Payment, error) {
	return &p, nil
}

func (r *stubPaymentRepo) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *stubPaymentRepo) GetByOrder(context.Context, string) (*domain.Payment, error) {
	return nil, domain.ErrNotFound
}

func (r *stubPaymentRepo) ListByUser(context.Context, string) ([]domain.Payment, error) {
	return nil, nil
}

func (r *stubPaymentRepo) ListAll(context.Context) ([]domain.Payment, error) { return nil, nil }

func (r *stubPaymentRepo) CreateHistory(_ context.Context, h domain.PaymentHistory) (*domain.PaymentHistory, error) {
	return &h, nil
}

func (r *stubPaymentRepo) GetHistory(context.Context, string) (*domain.PaymentHistory, error) {
	return nil, domain.ErrNotFound
}

func (r *stubPaymentRepo) ListHistoryByUser(context.Context, string) ([]domain.PaymentHistory, error) {
	return nil, nil
}

func (r *stubPaymentRepo) ListAllHistory(context.Context) ([]domain.PaymentHistory, error) {
	return nil, nil
}

func (r *stubPaymentRepo) DeleteHistory(context.Context, string, string, int) error { return nil }

func newFixture() (*Service, *memoryInvoiceRepo) {
	invoices := newMemoryInvoiceRepo()
	payments := &stubPaymentRepo{payments: map[string]*domain.Payment{
		"pay-1": {ID: "pay-1", UserID: "u1", Amount: decimal.NewFromInt(90_000), Currency: domain.XOF},
		"pay-2": {ID: "pay-2", UserID: "u2", Amount: decimal.NewFromInt(45_000), Currency: domain.XOF},
	}}
	return New(invoices, payments), invoices
}

func TestCreateNumbersSequentially(t *testing.T) {
	svc, _ := newFixture()
	ctx := context.Background()
	year := time.Now().Year()

	first, err := svc.Create(ctx, "u1", false, "pay-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if want := fmt.Sprintf("FAC-%d-0001", year); first.Number != want {
		t.Fatalf("expected %s, got %s", want, first.Number)
	}
	if !first.Amount.Equal(decimal.NewFromInt(90_000)) || first.Currency != domain.XOF {
		t.Fatalf("invoice does not mirror the payment: %+v", first)
	}

	second, err := svc.Create(ctx, "u2", false, "pay-2")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if want := fmt.Sprintf("FAC-%d-0002", year); second.Number != want {
		t.Fatalf("expected %s, got %s", want, second.Number)
	}
}

func TestCreateIsIdempotentPerPayment(t *testing.T) {
	svc, repo := newFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, "u1", false, "pay-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	again, err := svc.Create(ctx, "u1", false, "pay-1")
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if again.ID != first.ID || again.Number != first.Number {
		t.Fatalf("expected the existing invoice back, got %+v", again)
	}
	if len(repo.invoices) != 1 {
		t.Fatalf("expected a single invoice, got %d", len(repo.invoices))
	}
}

func TestCreateGuards(t *testing.T) {
	svc, _ := newFixture()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", false, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown payment: got %v", err)
	}
	if _, err := svc.Create(ctx, "intrus", false, "pay-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other user's payment: got %v", err)
	}
	if _, err := svc.Create(ctx, "intrus", true, "pay-1"); err != nil {
		t.Fatalf("admin create failed: %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, _ := newFixture()
	ctx := context.Background()

	inv, err := svc.Create(ctx, "u1", false, "pay-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Get(ctx, "u1", false, inv.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := svc.Get(ctx, "intrus", false, inv.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other user: got %v", err)
	}
	if _, err := svc.GetByPayment(ctx, "u1", false, "pay-1"); err != nil {
		t.Fatalf("read by payment failed: %v", err)
	}
}
