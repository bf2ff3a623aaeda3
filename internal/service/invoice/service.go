package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	invoicerepo "github.com/meloogk/O-Maillot-Backend/internal/repository/invoice"
	paymentrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/payment"
)

// Service issues invoices from settled payments. Numbers follow the
// FAC-<year>-<sequence> scheme, with the sequence restarting each year.
type Service struct {
	invoices invoicerepo.Repository
	payments paymentrepo.Repository
}

// New creates a Service.
func New(invoices invoicerepo.Repository, payments paymentrepo.Repository) *Service {
	return &Service{invoices: invoices, payments: payments}
}

// Create issues the invoice for a payment. At most one invoice exists per
// payment; a second call returns the one already issued.
func (s *Service) Create(ctx context.Context, requesterID string, isAdmin bool, paymentID string) (*domain.Invoice, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.UserID != requesterID {
		return nil, domain.ErrForbidden
	}

	year := time.Now().Year()
	seq, err := s.invoices.NextSequence(ctx, year)
	if err != nil {
		return nil, err
	}

	created, err := s.invoices.Create(ctx, domain.Invoice{
		PaymentID: p.ID,
		Number:    fmt.Sprintf("FAC-%d-%04d", year, seq),
		Amount:    p.Amount,
		Currency:  p.Currency,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return s.invoices.GetByPayment(ctx, p.ID)
		}
		return nil, err
	}
	return created, nil
}

// Get returns an invoice. Non-admins only see invoices of their own payments.
func (s *Service) Get(ctx context.Context, requesterID string, isAdmin bool, id string) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.authorize(ctx, requesterID, isAdmin, inv)
}

// GetByPayment returns the invoice issued for a payment, if any.
func (s *Service) GetByPayment(ctx context.Context, requesterID string, isAdmin bool, paymentID string) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return s.authorize(ctx, requesterID, isAdmin, inv)
}

// List returns every invoice. Admin only; the handler enforces the role.
func (s *Service) List(ctx context.Context) ([]domain.Invoice, error) {
	return s.invoices.List(ctx)
}

func (s *Service) authorize(ctx context.Context, requesterID string, isAdmin bool, inv *domain.Invoice) (*domain.Invoice, error) {
	if isAdmin {
		return inv, nil
	}
	p, err := s.payments.GetByID(ctx, inv.PaymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != requesterID {
		return nil, domain.ErrForbidden
	}
	return inv, nil
}
