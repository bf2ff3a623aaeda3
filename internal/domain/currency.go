package domain

// Currency is an ISO-4217 currency code handled by the shop.
type Currency string

const (
	// XOF is the base currency. All stored totals are denominated in it.
	XOF Currency = "XOF"
	EUR Currency = "EUR"
	USD Currency = "USD"
)

// SupportedCurrencies lists every currency the shop accepts, base first.
var SupportedCurrencies = []Currency{XOF, EUR, USD}

// Supported reports whether c is one of the shop's currencies.
func (c Currency) Supported() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}
