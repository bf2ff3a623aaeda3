package domain

import (
	"errors"
	"time"
)

// ErrCartOwner is returned when a cart is created with neither or both of a
// user and an anonymous session as owner.
var ErrCartOwner = errors.New("cart must belong to exactly one of user or session")

// Cart is a mutable shopping basket owned by exactly one of an authenticated
// user or an anonymous session. It is deleted on successful checkout or when
// merged into a user cart at login.
type Cart struct {
	ID        string     `json:"id"`
	UserID    *string    `json:"utilisateur,omitempty"`
	SessionID *string    `json:"sessionId,omitempty"`
	Items     []CartItem `json:"articles"`
	UpdatedAt time.Time  `json:"misAJourLe"`
}

// CartItem is a (product, size, quantity) line. Duplicate (product, size)
// pairs are merged by the cart service, never stored twice.
type CartItem struct {
	ID        string `json:"id"`
	ProductID string `json:"produit"`
	Size      Size   `json:"taille"`
	Quantity  int    `json:"quantite"`
}

// NewCart builds an empty cart, enforcing owner exclusivity.
func NewCart(userID, sessionID *string) (Cart, error) {
	if (userID == nil) == (sessionID == nil) {
		return Cart{}, ErrCartOwner
	}
	return Cart{UserID: userID, SessionID: sessionID, Items: []CartItem{}}, nil
}

// Find returns the line matching (productID, size), if any.
func (c Cart) Find(productID string, size Size) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID && it.Size == size {
			return it, true
		}
	}
	return CartItem{}, false
}

// Empty reports whether the cart holds no line items.
func (c Cart) Empty() bool {
	return len(c.Items) == 0
}
