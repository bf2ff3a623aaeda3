package cart

import (
	"context"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, c domain.Cart) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
	// UpsertItem adds quantity to the (product, size) line, creating it when
	// absent. Duplicate pairs are merged, never stored twice.
	UpsertItem(ctx context.Context, cartID, productID string, size domain.Size, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Delete(ctx context.Context, cartID string) error
	// Merge moves every line of the source cart into the target cart, merging
	// quantities on (product, size), then deletes the source cart.
	Merge(ctx context.Context, sourceCartID, targetCartID string) error
}
