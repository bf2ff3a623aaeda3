package invoice

import (
	"context"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
)

type Repository interface {
	// Create inserts the invoice. Returns domain.ErrAlreadyExists when the
	// payment already has one.
	Create(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error)
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByPayment(ctx context.Context, paymentID string) (*domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
	// NextSequence returns the next invoice number for a year, starting at 1.
	NextSequence(ctx context.Context, year int) (int, error)
}
