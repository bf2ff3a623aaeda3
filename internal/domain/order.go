package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the order lifecycle state. The stored strings are the
// French labels the storefront has always used.
type OrderStatus string

const (
	OrderPending   OrderStatus = "en attente"
	OrderPaid      OrderStatus = "payée"
	OrderShipped   OrderStatus = "expédiée"
	OrderDelivered OrderStatus = "livrée"
	OrderCancelled OrderStatus = "annulée"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces the order state machine:
// en attente → payée → expédiée → livrée, with annulée reachable only
// from en attente.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderPaid || next == OrderCancelled
	case OrderPaid:
		return next == OrderShipped
	case OrderShipped:
		return next == OrderDelivered
	}
	return false
}

// Address is a delivery address. All four fields are required at checkout.
type Address struct {
	Street     string `json:"rue"`
	City       string `json:"ville"`
	PostalCode string `json:"codePostal"`
	Country    string `json:"pays"`
}

// Complete reports whether every required field is present.
func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// OrderItem is a priced-at-creation line. No price is stored on the line:
// display prices are always rederived from the order totals.
type OrderItem struct {
	ProductID string `json:"produit"`
	Size      Size   `json:"taille"`
	Quantity  int    `json:"quantite"`
}

// Order is the immutable snapshot produced at checkout. TotalPrice is the
// pre-tier-discount XOF sum and AppliedDiscount the tier percentage captured
// at creation; both never change afterwards. Display totals are always
// TotalPrice × (1 − AppliedDiscount/100).
type Order struct {
	ID               string          `json:"id"`
	UserID           string          `json:"utilisateur"`
	Items            []OrderItem     `json:"articles"`
	TotalPrice       decimal.Decimal `json:"prixTotal"`
	AppliedDiscount  int             `json:"reductionAppliquee"`
	DeliveryAddress  Address         `json:"adresseLivraison"`
	Status           OrderStatus     `json:"statutCommande"`
	ExpectedDelivery *time.Time      `json:"dateLivraisonPrevue,omitempty"`
	CreatedAt        time.Time       `json:"creeLe"`
}

// DisplayTotal is the XOF amount actually owed for the order.
func (o Order) DisplayTotal() decimal.Decimal {
	return applyPercentDiscount(o.TotalPrice, decimal.NewFromInt(int64(o.AppliedDiscount)))
}
