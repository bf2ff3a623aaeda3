package payment

import (
	"context"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
)

type Repository interface {
	// Create inserts the payment and credits the earned loyalty points to the
	// payer in one transaction. Returns domain.ErrAlreadyExists when the order
	// already has a payment.
	Create(ctx context.Context, p domain.Payment, points int) (*domain.Payment, error)
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByOrder(ctx context.Context, orderID string) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)

	CreateHistory(ctx context.Context, h domain.PaymentHistory) (*domain.PaymentHistory, error)
	GetHistory(ctx context.Context, id string) (*domain.PaymentHistory, error)
	ListHistoryByUser(ctx context.Context, userID string) ([]domain.PaymentHistory, error)
	ListAllHistory(ctx context.Context) ([]domain.PaymentHistory, error)
	// DeleteHistory removes the entry and debits pointsToRemove from the
	// entry's user (floored at zero) in one transaction.
	DeleteHistory(ctx context.Context, id, userID string, pointsToRemove int) error
}
