package order

import (
	"context"
	"time"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateFromCartInput is the checkout write set. The repository performs the
// stock decrement, order insert and cart delete in a single transaction.
type CreateFromCartInput struct {
	UserID           string
	CartID           string
	Items            []domain.OrderItem
	TotalPrice       decimal.Decimal
	AppliedDiscount  int
	DeliveryAddress  domain.Address
	ExpectedDelivery *time.Time
}

type Repository interface {
	// CreateFromCart atomically decrements stock (failing with
	// domain.ErrInsufficientStock when any line cannot be covered), inserts
	// the order and deletes the cart.
	CreateFromCart(ctx context.Context, in CreateFromCartInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	SetExpectedDelivery(ctx context.Context, id string, at time.Time) error
	// Cancel sets the status to annulée and restocks every line, atomically.
	Cancel(ctx context.Context, id string) error
}
