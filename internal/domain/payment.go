package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the customer-selected payment channel.
type PaymentMethod string

const (
	MethodCard   PaymentMethod = "carte"
	MethodPaypal PaymentMethod = "paypal"
	MethodStripe PaymentMethod = "stripe"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodPaypal, MethodStripe:
		return true
	}
	return false
}

// PaymentStatus mirrors the simulated gateway outcome.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "en attente"
	PaymentPaid     PaymentStatus = "payée"
	PaymentFailed   PaymentStatus = "échouée"
	PaymentRefunded PaymentStatus = "remboursée"
)

// Payment records a settled charge against an order. At most one payment
// exists per order; Amount is already tier-discount adjusted.
type Payment struct {
	ID            string            `json:"id"`
	OrderID       string            `json:"commande"`
	UserID        string            `json:"utilisateur"`
	Method        PaymentMethod     `json:"methode"`
	Status        PaymentStatus     `json:"statut"`
	Amount        decimal.Decimal   `json:"montant"`
	Currency      Currency          `json:"devise"`
	TransactionID string            `json:"transactionId"`
	Details       map[string]string `json:"details,omitempty"`
	PaidAt        time.Time         `json:"datePaiement"`
}

// PaymentHistory is an append-only mirror of a payment event. Entries can be
// deleted by an administrator, which triggers a compensating point reversal.
type PaymentHistory struct {
	ID            string            `json:"id"`
	OrderID       string            `json:"commande"`
	UserID        string            `json:"utilisateur"`
	Method        PaymentMethod     `json:"methode"`
	Status        PaymentStatus     `json:"statut"`
	Amount        decimal.Decimal   `json:"montant"`
	Currency      Currency          `json:"devise"`
	TransactionID string            `json:"transactionId"`
	Details       map[string]string `json:"details,omitempty"`
	PaidAt        time.Time         `json:"datePaiement"`
	CreatedAt     time.Time         `json:"creeLe"`
}

// Invoice is generated one-to-one from an existing payment and never mutated
// afterwards.
type Invoice struct {
	ID        string          `json:"id"`
	PaymentID string          `json:"paiement"`
	Number    string          `json:"numero"`
	Amount    decimal.Decimal `json:"montant"`
	Currency  Currency        `json:"devise"`
	IssuedAt  time.Time       `json:"emiseLe"`
}
