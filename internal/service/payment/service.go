package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/meloogk/O-Maillot-Backend/internal/loyalty"
	orderrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/order"
	paymentrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/payment"
)

var (
	// ErrInvalidMethod is returned for an unknown payment method.
	ErrInvalidMethod = errors.New("unknown payment method")
	// ErrOrderNotPending is returned when paying an order not awaiting payment.
	ErrOrderNotPending = errors.New("order is not awaiting payment")
)

// Service settles pending orders and maintains the payment history ledger.
// Loyalty points accrue exactly once per charge, when the payment row is
// created; history entries only mirror payments and never accrue again.
type Service struct {
	payments paymentrepo.Repository
	orders   orderrepo.Repository
	policy   *loyalty.Policy
}

// New creates a Service.
func New(payments paymentrepo.Repository, orders orderrepo.Repository, policy *loyalty.Policy) *Service {
	return &Service{payments: payments, orders: orders, policy: policy}
}

// CreateInput is the customer-supplied part of a payment.
type CreateInput struct {
	OrderID string               `json:"commande"`
	Method  domain.PaymentMethod `json:"methode"`
	Details map[string]string    `json:"details"`
}

// Create charges a pending order. The charged amount is the order's display
// total, derived from the discount captured at checkout, and is always
// recorded in XOF like the order itself. The point award is credited
// atomically with the payment row and a history entry mirrors the charge.
// The order status is not touched: payment state and order state are
// administered separately, and the per-order uniqueness of payments is what
// refuses a second charge.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*domain.Payment, error) {
	if !in.Method.Valid() {
		return nil, ErrInvalidMethod
	}

	o, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if o.Status != domain.OrderPending {
		return nil, ErrOrderNotPending
	}

	amount := o.DisplayTotal()
	points, err := s.policy.PointsForPayment(ctx, amount, domain.XOF)
	if err != nil {
		return nil, err
	}

	txnID, err := newTransactionID()
	if err != nil {
		return nil, err
	}
	p := domain.Payment{
		OrderID:       o.ID,
		UserID:        userID,
		Method:        in.Method,
		Status:        domain.PaymentPaid,
		Amount:        amount,
		Currency:      domain.XOF,
		TransactionID: txnID,
		Details:       in.Details,
		PaidAt:        time.Now(),
	}

	created, err := s.payments.Create(ctx, p, points)
	if err != nil {
		return nil, err
	}

	// Mirror the charge into the history ledger, without any further accrual.
	if _, err := s.payments.CreateHistory(ctx, historyFromPayment(*created)); err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a payment. Non-admins only see their own.
func (s *Service) Get(ctx context.Context, requesterID string, isAdmin bool, paymentID string) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.UserID != requesterID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// GetByOrder returns the payment settling an order, if any.
func (s *Service) GetByOrder(ctx context.Context, requesterID string, isAdmin bool, orderID string) (*domain.Payment, error) {
	p, err := s.payments.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.UserID != requesterID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// ListMine returns the requester's payments, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]domain.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}

// ListAll returns every payment. Admin only; the handler enforces the role.
func (s *Service) ListAll(ctx context.Context) ([]domain.Payment, error) {
	return s.payments.ListAll(ctx)
}

// ListHistory returns the requester's history entries.
func (s *Service) ListHistory(ctx context.Context, userID string) ([]domain.PaymentHistory, error) {
	return s.payments.ListHistoryByUser(ctx, userID)
}

// ListAllHistory returns the full ledger. Admin only.
func (s *Service) ListAllHistory(ctx context.Context) ([]domain.PaymentHistory, error) {
	return s.payments.ListAllHistory(ctx)
}

// DeleteHistory removes a ledger entry and reverses the points its amount
// would have earned, floored at zero by the repository. Admin only.
func (s *Service) DeleteHistory(ctx context.Context, id string) error {
	h, err := s.payments.GetHistory(ctx, id)
	if err != nil {
		return err
	}
	points, err := s.policy.PointsForPayment(ctx, h.Amount, domain.XOF)
	if err != nil {
		return err
	}
	return s.payments.DeleteHistory(ctx, h.ID, h.UserID, points)
}

func historyFromPayment(p domain.Payment) domain.PaymentHistory {
	return domain.PaymentHistory{
		OrderID:       p.OrderID,
		UserID:        p.UserID,
		Method:        p.Method,
		Status:        p.Status,
		Amount:        p.Amount,
		Currency:      p.Currency,
		TransactionID: p.TransactionID,
		Details:       p.Details,
		PaidAt:        p.PaidAt,
	}
}

func newTransactionID() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf)), nil
}
