package order

import (
	"context"
	"errors"
	"time"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/meloogk/O-Maillot-Backend/internal/loyalty"
	cartrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/cart"
	orderrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/order"
	productrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/product"
	userrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/user"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart is returned when checking out a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrIncompleteAddress is returned when a delivery address field is missing.
	ErrIncompleteAddress = errors.New("incomplete delivery address")
	// ErrInvalidDeliveryDate is returned when the expected delivery is in the past.
	ErrInvalidDeliveryDate = errors.New("expected delivery must be in the future")
	// ErrInvalidLineItem is returned when a cart line is malformed.
	ErrInvalidLineItem = errors.New("invalid cart line")
	// ErrInvalidTransition is returned for a status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotCancellable is returned when cancelling an order already in progress.
	ErrNotCancellable = errors.New("only pending orders can be cancelled")
)

// Service turns carts into orders and drives the order lifecycle.
type Service struct {
	orders   orderrepo.Repository
	carts    cartrepo.Repository
	products productrepo.Repository
	users    userrepo.Repository
}

// New creates a Service.
func New(orders orderrepo.Repository, carts cartrepo.Repository, products productrepo.Repository, users userrepo.Repository) *Service {
	return &Service{orders: orders, carts: carts, products: products, users: users}
}

// CheckoutInput is the customer-supplied part of a checkout.
type CheckoutInput struct {
	DeliveryAddress  domain.Address `json:"adresseLivraison"`
	ExpectedDelivery *time.Time     `json:"dateLivraisonPrevue"`
}

// Checkout converts the user's cart into a pending order. The stored total is
// the pre-tier-discount sum of the cart at current product prices; the tier
// discount percentage is captured once, here, from the user's point balance.
// Stock reservation, order insert and cart deletion happen in one
// transaction.
func (s *Service) Checkout(ctx context.Context, userID string, in CheckoutInput) (*domain.Order, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, domain.ErrInactiveAccount
	}
	if !in.DeliveryAddress.Complete() {
		return nil, ErrIncompleteAddress
	}
	if in.ExpectedDelivery != nil && !in.ExpectedDelivery.After(time.Now()) {
		return nil, ErrInvalidDeliveryDate
	}

	c, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		if line.Quantity <= 0 || !line.Size.Valid() {
			return nil, ErrInvalidLineItem
		}
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if _, ok := p.Variant(line.Size); !ok {
			return nil, ErrInvalidLineItem
		}
		total = total.Add(p.UnitPrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
		})
	}

	return s.orders.CreateFromCart(ctx, orderrepo.CreateFromCartInput{
		UserID:           userID,
		CartID:           c.ID,
		Items:            items,
		TotalPrice:       total,
		AppliedDiscount:  loyalty.DiscountPercent(u.LoyaltyPoints),
		DeliveryAddress:  in.DeliveryAddress,
		ExpectedDelivery: in.ExpectedDelivery,
	})
}

// Get returns an order. Non-admins only see their own.
func (s *Service) Get(ctx context.Context, requesterID string, isAdmin bool, orderID string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != requesterID {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

// ListMine returns the requester's orders, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order. Admin only; the handler enforces the role.
func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}

// UpdateStatus advances an order along its lifecycle. Cancellation goes
// through Cancel so stock is returned.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidTransition
	}
	if next == domain.OrderCancelled {
		return s.Cancel(ctx, orderID)
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}
	if err := s.orders.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, orderID)
}

// SetExpectedDelivery records or moves the promised delivery date.
func (s *Service) SetExpectedDelivery(ctx context.Context, orderID string, at time.Time) (*domain.Order, error) {
	if !at.After(time.Now()) {
		return nil, ErrInvalidDeliveryDate
	}
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	if err := s.orders.SetExpectedDelivery(ctx, orderID, at); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, orderID)
}

// Cancel voids a pending order and returns its stock.
func (s *Service) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderPending {
		return nil, ErrNotCancellable
	}
	if err := s.orders.Cancel(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, orderID)
}
