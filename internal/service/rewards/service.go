package rewards

import (
	"context"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/meloogk/O-Maillot-Backend/internal/loyalty"
	orderrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/order"
	userrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/user"
	"github.com/shopspring/decimal"
)

// Referral summarises the account's referral activity.
type Referral struct {
	Code          string  `json:"codeParrainage"`
	CodeUsed      *string `json:"codeParrainUtilise,omitempty"`
	ReferredCount int     `json:"nombreFilleuls"`
	Points        int     `json:"pointsParrainage"`
}

// Summary is the full rewards view of an account: point balance, position on
// the tier ladder, referral activity and lifetime purchase totals.
type Summary struct {
	Points      int             `json:"points"`
	TotalEarned int             `json:"totalEarned"`
	Level       loyalty.Level   `json:"niveau"`
	Referral    Referral        `json:"parrainage"`
	TotalOrders int             `json:"totalCommandes"`
	TotalSpent  decimal.Decimal `json:"totalDepense"`
	Currency    domain.Currency `json:"devise"`
}

// Service assembles reward summaries.
type Service struct {
	users     userrepo.Repository
	orders    orderrepo.Repository
	converter loyalty.Converter
}

// New creates a Service.
func New(users userrepo.Repository, orders orderrepo.Repository, converter loyalty.Converter) *Service {
	return &Service{users: users, orders: orders, converter: converter}
}

// Summary builds the rewards view for a user. Cancelled orders do not count
// toward the purchase totals. The spent total is converted to the requested
// currency when one is given; conversion trouble falls back to XOF amounts.
func (s *Service) Summary(ctx context.Context, userID string, currency domain.Currency) (*Summary, error) {
	if currency == "" {
		currency = domain.XOF
	}
	if !currency.Supported() {
		return nil, loyalty.ErrUnsupportedCurrency
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	spent := decimal.Zero
	count := 0
	for _, o := range orders {
		if o.Status == domain.OrderCancelled {
			continue
		}
		count++
		spent = spent.Add(o.DisplayTotal())
	}
	if currency != domain.XOF {
		spent = s.converter.Convert(ctx, spent, domain.XOF, currency)
	}

	return &Summary{
		Points:      u.LoyaltyPoints,
		TotalEarned: u.TotalEarned,
		Level:       loyalty.ComputeLevel(u.LoyaltyPoints),
		Referral: Referral{
			Code:          u.ReferralCode,
			CodeUsed:      u.ReferralCodeUsed,
			ReferredCount: len(u.ReferredUsers),
			Points:        u.ReferralPoints,
		},
		TotalOrders: count,
		TotalSpent:  spent,
		Currency:    currency,
	}, nil
}

// Tiers exposes the fixed ladder for display.
func (s *Service) Tiers() []loyalty.Tier {
	return loyalty.Tiers()
}
