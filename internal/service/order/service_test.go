package order

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	orderrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/order"
	userrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/user"
	"github.com/shopspring/decimal"
)

type memoryOrderRepo struct {
	orders   map[string]*domain.Order
	stock    map[string]int // productID|size
	restocks int
	nextID   int
}

func stockKey(productID string, size domain.Size) string {
	return productID + "|" + string(size)
}

func (r *memoryOrderRepo) CreateFromCart(_ context.Context, in orderrepo.CreateFromCartInput) (*domain.Order, error) {
	for _, it := range in.Items {
		if r.stock[stockKey(it.ProductID, it.Size)] < it.Quantity {
			return nil, domain.ErrInsufficientStock
		}
	}
	for _, it := range in.Items {
		r.stock[stockKey(it.ProductID, it.Size)] -= it.Quantity
	}
	r.nextID++
	o := &domain.Order{
		ID:               fmt.Sprintf("order-%d", r.nextID),
		UserID:           in.UserID,
		Items:            in.Items,
		TotalPrice:       in.TotalPrice,
		AppliedDiscount:  in.AppliedDiscount,
		DeliveryAddress:  in.DeliveryAddress,
		Status:           domain.OrderPending,
		ExpectedDelivery: in.ExpectedDelivery,
		CreatedAt:        time.Now(),
	}
	r.orders[o.ID] = o
	return o, nil
}

func (r *memoryOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *memoryOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memoryOrderRepo) ListAll(context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *memoryOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

func (r *memoryOrderRepo) SetExpectedDelivery(_ context.Context, id string, at time.Time) error {
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.ExpectedDelivery = &at
	return nil
}

func (r *memoryOrderRepo) Cancel(_ context.Context, id string) error {
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = domain.OrderCancelled
	for _, it := range o.Items {
		r.stock[stockKey(it.ProductID, it.Size)] += it.Quantity
		r.restocks++
	}
	return nil
}

type stubCartRepo struct {
	carts   map[string]*domain.Cart // by user id
	deleted []string
}

func (r *stubCartRepo) Create(_ context.Context, c domain.Cart) (*domain.Cart, error) {
	return &c, nil
}

func (r *stubCartRepo) GetByID(context.Context, string) (*domain.Cart, error) {
	return nil, domain.ErrNotFound
}

func (r *stubCartRepo) GetByUser(_ context.Context, userID string) (*domain.Cart, error) {
	c, ok := r.carts[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *stubCartRepo) GetBySession(context.Context, string) (*domain.Cart, error) {
	return nil, domain.ErrNotFound
}

func (r *stubCartRepo) UpsertItem(context.Context, string, string, domain.Size, int) error { return nil }
func (r *stubCartRepo) SetItemQuantity(context.Context, string, string, int) error         { return nil }
func (r *stubCartRepo) RemoveItem(context.Context, string, string) error                   { return nil }
func (r *stubCartRepo) Merge(context.Context, string, string) error                        { return nil }

func (r *stubCartRepo) Delete(_ context.Context, cartID string) error {
	r.deleted = append(r.deleted, cartID)
	return nil
}

type stubProductRepo struct {
	products map[string]*domain.Product
}

func (r *stubProductRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, nil
}

func (r *stubProductRepo) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, nil
}

func (r *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *stubProductRepo) List(context.Context) ([]domain.Product, error) { return nil, nil }

type stubUserRepo struct {
	users map[string]*domain.User
}

func (r *stubUserRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	return &u, nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) GetByReferralCode(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) Redeem(context.Context, userrepo.RedeemInput) error  { return nil }
func (r *stubUserRepo) AddLoyaltyPoints(context.Context, string, int) error { return nil }

type fixture struct {
	svc    *Service
	orders *memoryOrderRepo
	carts  *stubCartRepo
	users  *stubUserRepo
}

func newFixture() *fixture {
	orders := &memoryOrderRepo{orders: map[string]*domain.Order{}, stock: map[string]int{}}
	carts := &stubCartRepo{carts: map[string]*domain.Cart{}}
	products := &stubProductRepo{products: map[string]*domain.Product{}}
	users := &stubUserRepo{users: map[string]*domain.User{}}

	users.users["u1"] = &domain.User{ID: "u1", Active: true, LoyaltyPoints: 1500} // FANA, 10%
	products.products["p1"] = &domain.Product{
		ID:    "p1",
		Title: "Maillot domicile",
		Price: decimal.NewFromInt(1000),
		Sizes: []domain.SizeVariant{{Size: domain.SizeM, Quantity: 10}},
	}
	orders.stock[stockKey("p1", domain.SizeM)] = 10

	cartID := "cart-u1"
	userID := "u1"
	carts.carts["u1"] = &domain.Cart{
		ID:     cartID,
		UserID: &userID,
		Items:  []domain.CartItem{{ID: "i1", ProductID: "p1", Size: domain.SizeM, Quantity: 1}},
	}

	return &fixture{
		svc:    New(orders, carts, products, users),
		orders: orders,
		carts:  carts,
		users:  users,
	}
}

func validAddress() domain.Address {
	return domain.Address{Street: "12 rue des Jardins", City: "Abidjan", PostalCode: "00225", Country: "Côte d'Ivoire"}
}

func TestCheckoutCapturesTierDiscount(t *testing.T) {
	f := newFixture()

	o, err := f.svc.Checkout(context.Background(), "u1", CheckoutInput{DeliveryAddress: validAddress()})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// The stored total is pre-discount; the display total applies the 10%
	// tier reduction captured at checkout.
	if !o.TotalPrice.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected stored total 1000, got %s", o.TotalPrice)
	}
	if o.AppliedDiscount != 10 {
		t.Fatalf("expected captured discount 10, got %d", o.AppliedDiscount)
	}
	if !o.DisplayTotal().Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected display total 900, got %s", o.DisplayTotal())
	}
	if o.Status != domain.OrderPending {
		t.Fatalf("expected pending status, got %s", o.Status)
	}
	if f.orders.stock[stockKey("p1", domain.SizeM)] != 9 {
		t.Fatalf("stock not decremented")
	}
}

func TestCheckoutDiscountSurvivesLaterPointChanges(t *testing.T) {
	f := newFixture()

	o, err := f.svc.Checkout(context.Background(), "u1", CheckoutInput{DeliveryAddress: validAddress()})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// Points change after checkout must not affect the captured discount.
	f.users.users["u1"].LoyaltyPoints = 20000

	got, err := f.svc.Get(context.Background(), "u1", false, o.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.AppliedDiscount != 10 || !got.DisplayTotal().Equal(decimal.NewFromInt(900)) {
		t.Fatalf("discount drifted: %+v", got)
	}
}

func TestCheckoutGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Checkout(ctx, "ghost", CheckoutInput{DeliveryAddress: validAddress()}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown user: got %v", err)
	}

	f.users.users["u2"] = &domain.User{ID: "u2", Active: false}
	if _, err := f.svc.Checkout(ctx, "u2", CheckoutInput{DeliveryAddress: validAddress()}); !errors.Is(err, domain.ErrInactiveAccount) {
		t.Fatalf("inactive user: got %v", err)
	}

	addr := validAddress()
	addr.City = ""
	if _, err := f.svc.Checkout(ctx, "u1", CheckoutInput{DeliveryAddress: addr}); !errors.Is(err, ErrIncompleteAddress) {
		t.Fatalf("incomplete address: got %v", err)
	}

	past := time.Now().Add(-time.Hour)
	if _, err := f.svc.Checkout(ctx, "u1", CheckoutInput{DeliveryAddress: validAddress(), ExpectedDelivery: &past}); !errors.Is(err, ErrInvalidDeliveryDate) {
		t.Fatalf("past delivery date: got %v", err)
	}

	f.carts.carts["u1"].Items = nil
	if _, err := f.svc.Checkout(ctx, "u1", CheckoutInput{DeliveryAddress: validAddress()}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("empty cart: got %v", err)
	}

	delete(f.carts.carts, "u1")
	if _, err := f.svc.Checkout(ctx, "u1", CheckoutInput{DeliveryAddress: validAddress()}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("missing cart: got %v", err)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	f := newFixture()
	f.orders.stock[stockKey("p1", domain.SizeM)] = 0

	if _, err := f.svc.Checkout(context.Background(), "u1", CheckoutInput{DeliveryAddress: validAddress()}); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newFixture()

	o, err := f.svc.Checkout(context.Background(), "u1", CheckoutInput{DeliveryAddress: validAddress()})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := f.svc.Get(context.Background(), "intrus", false, o.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other user: got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), "intrus", true, o.ID); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
}

func TestStatusLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.svc.Checkout(ctx, "u1", CheckoutInput{DeliveryAddress: validAddress()})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// Skipping a step is refused.
	if _, err := f.svc.UpdateStatus(ctx, o.ID, domain.OrderShipped); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending→shipped: got %v", err)
	}

	for _, next := range []domain.OrderStatus{domain.OrderPaid, domain.OrderShipped, domain.OrderDelivered} {
		updated, err := f.svc.UpdateStatus(ctx, o.ID, next)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected %s, got %s", next, updated.Status)
		}
	}

	if _, err := f.svc.UpdateStatus(ctx, o.ID, domain.OrderPaid); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("delivered is terminal: got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, o.ID, "perdue"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("unknown status: got %v", err)
	}
}

func TestCancelRestocksPendingOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.svc.Checkout(ctx, "u1", CheckoutInput{DeliveryAddress: validAddress()})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if f.orders.stock[stockKey("p1", domain.SizeM)] != 9 {
		t.Fatalf("stock not decremented at checkout")
	}

	cancelled, err := f.svc.Cancel(ctx, o.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.OrderCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	if f.orders.stock[stockKey("p1", domain.SizeM)] != 10 {
		t.Fatalf("stock not returned on cancel")
	}
}

func TestCancelRefusedAfterPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.svc.Checkout(ctx, "u1", CheckoutInput{DeliveryAddress: validAddress()})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, o.ID, domain.OrderPaid); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	if _, err := f.svc.Cancel(ctx, o.ID); !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
	if f.orders.restocks != 0 {
		t.Fatalf("no restock may happen for a refused cancel")
	}
}

func TestSetExpectedDelivery(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.svc.Checkout(ctx, "u1", CheckoutInput{DeliveryAddress: validAddress()})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	at := time.Now().Add(72 * time.Hour)
	updated, err := f.svc.SetExpectedDelivery(ctx, o.ID, at)
	if err != nil {
		t.Fatalf("set delivery failed: %v", err)
	}
	if updated.ExpectedDelivery == nil || !updated.ExpectedDelivery.Equal(at) {
		t.Fatalf("delivery date not recorded: %+v", updated.ExpectedDelivery)
	}

	if _, err := f.svc.SetExpectedDelivery(ctx, o.ID, time.Now().Add(-time.Hour)); !errors.Is(err, ErrInvalidDeliveryDate) {
		t.Fatalf("past date: got %v", err)
	}
}
