package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	cartrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/cart"
	productrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/product"
)

var (
	// ErrInvalidQuantity is returned for zero or negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidSize is returned for an unknown size label.
	ErrInvalidSize = errors.New("unknown size")
	// ErrOwnerRequired is returned when neither a user nor a session owns the call.
	ErrOwnerRequired = errors.New("a user or session owner is required")
)

// Owner identifies who a cart operation acts for: an authenticated user or an
// anonymous session, never both.
type Owner struct {
	UserID    string
	SessionID string
}

func (o Owner) validate() error {
	if (o.UserID == "") == (o.SessionID == "") {
		return ErrOwnerRequired
	}
	return nil
}

// Service manages shopping carts: one per user or anonymous session, with
// (product, size) lines merged on add and session carts folded into user
// carts at login.
type Service struct {
	carts    cartrepo.Repository
	products productrepo.Repository
}

// New creates a Service.
func New(carts cartrepo.Repository, products productrepo.Repository) *Service {
	return &Service{carts: carts, products: products}
}

// Get returns the owner's cart, creating an empty one on first access.
func (s *Service) Get(ctx context.Context, owner Owner) (*domain.Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	c, err := s.find(ctx, owner)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.create(ctx, owner)
}

// AddItem puts quantity units of (productID, size) into the owner's cart.
// An existing line for the same pair absorbs the quantity. Stock is checked
// against the requested total but only reserved at checkout.
func (s *Service) AddItem(ctx context.Context, owner Owner, productID string, size domain.Size, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !size.Valid() {
		return nil, ErrInvalidSize
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	variant, ok := p.Variant(size)
	if !ok {
		return nil, ErrInvalidSize
	}

	c, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}

	wanted := quantity
	if line, ok := c.Find(productID, size); ok {
		wanted += line.Quantity
	}
	if wanted > variant.Quantity {
		return nil, fmt.Errorf("%w: %d available in size %s", domain.ErrInsufficientStock, variant.Quantity, size)
	}

	if err := s.carts.UpsertItem(ctx, c.ID, productID, size, quantity); err != nil {
		return nil, err
	}
	return s.carts.GetByID(ctx, c.ID)
}

// UpdateItem sets the quantity of an existing line. Quantity zero removes it.
func (s *Service) UpdateItem(ctx context.Context, owner Owner, itemID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	c, err := s.ownedCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	line, ok := findItem(c, itemID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if quantity == 0 {
		if err := s.carts.RemoveItem(ctx, c.ID, itemID); err != nil {
			return nil, err
		}
		return s.carts.GetByID(ctx, c.ID)
	}

	p, err := s.products.GetByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	variant, ok := p.Variant(line.Size)
	if !ok || quantity > variant.Quantity {
		return nil, fmt.Errorf("%w: %d available in size %s", domain.ErrInsufficientStock, variant.Quantity, line.Size)
	}

	if err := s.carts.SetItemQuantity(ctx, c.ID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.carts.GetByID(ctx, c.ID)
}

// RemoveItem deletes a line from the owner's cart.
func (s *Service) RemoveItem(ctx context.Context, owner Owner, itemID string) (*domain.Cart, error) {
	c, err := s.ownedCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if _, ok := findItem(c, itemID); !ok {
		return nil, domain.ErrNotFound
	}
	if err := s.carts.RemoveItem(ctx, c.ID, itemID); err != nil {
		return nil, err
	}
	return s.carts.GetByID(ctx, c.ID)
}

// Clear empties the owner's cart by deleting it. The next access recreates it.
func (s *Service) Clear(ctx context.Context, owner Owner) error {
	c, err := s.ownedCart(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.carts.Delete(ctx, c.ID)
}

// MergeSession folds the anonymous session cart into the user's cart after
// login, merging quantities line by line. Missing session carts are a no-op.
func (s *Service) MergeSession(ctx context.Context, userID, sessionID string) (*domain.Cart, error) {
	if userID == "" || sessionID == "" {
		return nil, ErrOwnerRequired
	}

	source, err := s.carts.GetBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.Get(ctx, Owner{UserID: userID})
		}
		return nil, err
	}

	target, err := s.Get(ctx, Owner{UserID: userID})
	if err != nil {
		return nil, err
	}
	if err := s.carts.Merge(ctx, source.ID, target.ID); err != nil {
		return nil, err
	}
	return s.carts.GetByID(ctx, target.ID)
}

func (s *Service) find(ctx context.Context, owner Owner) (*domain.Cart, error) {
	if owner.UserID != "" {
		return s.carts.GetByUser(ctx, owner.UserID)
	}
	return s.carts.GetBySession(ctx, owner.SessionID)
}

// ownedCart is find without the create-on-miss behaviour.
func (s *Service) ownedCart(ctx context.Context, owner Owner) (*domain.Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	return s.find(ctx, owner)
}

func (s *Service) create(ctx context.Context, owner Owner) (*domain.Cart, error) {
	var userID, sessionID *string
	if owner.UserID != "" {
		userID = &owner.UserID
	} else {
		sessionID = &owner.SessionID
	}
	c, err := domain.NewCart(userID, sessionID)
	if err != nil {
		return nil, err
	}
	created, err := s.carts.Create(ctx, c)
	if err != nil {
		// Lost a race against a concurrent first access.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return s.find(ctx, owner)
		}
		return nil, err
	}
	return created, nil
}

func findItem(c *domain.Cart, itemID string) (domain.CartItem, bool) {
	for _, it := range c.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return domain.CartItem{}, false
}
