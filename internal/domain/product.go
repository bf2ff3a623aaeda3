package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Size is a jersey size variant label.
type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

// Sizes lists the allowed variant labels in display order.
var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

// Valid reports whether s is one of the known size labels.
func (s Size) Valid() bool {
	for _, v := range Sizes {
		if s == v {
			return true
		}
	}
	return false
}

// SizeVariant is the per-size stock of a product. Quantity never goes
// negative; a product holds at most one variant per size.
type SizeVariant struct {
	Size     Size `json:"taille"`
	Quantity int  `json:"quantite"`
}

// Product is a catalog entry. Price is the XOF list price; Discount is a
// product-level percentage applied before any loyalty tier discount.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"titre"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"prix"`
	Discount    decimal.Decimal `json:"discount"`
	Sizes       []SizeVariant   `json:"tailles"`
	Featured    bool            `json:"enVedette"`
	CreatedAt   time.Time       `json:"creeLe"`
}

// Variant returns the stock entry for the given size, if present.
func (p Product) Variant(size Size) (SizeVariant, bool) {
	for _, v := range p.Sizes {
		if v.Size == size {
			return v, true
		}
	}
	return SizeVariant{}, false
}

// UnitPrice is the XOF list price after the product-level discount, before
// any loyalty tier reduction.
func (p Product) UnitPrice() decimal.Decimal {
	return applyPercentDiscount(p.Price, p.Discount)
}

var hundred = decimal.NewFromInt(100)

func applyPercentDiscount(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(hundred.Sub(percent)).Div(hundred)
}
