package user

import (
	"context"
	"errors"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
)

// ErrCodeAlreadyUsed is returned by Redeem when the redeeming user's
// set-once used code turns out to be already set. Distinct from
// domain.ErrAlreadyExists, which Redeem returns when the referrer has
// already recorded this user.
var ErrCodeAlreadyUsed = errors.New("referral code already redeemed")

// RedeemInput carries one referral-code redemption. Both sides are written
// in a single transaction.
type RedeemInput struct {
	ReferrerID    string
	ReferredID    string
	Code          string
	ReferrerBonus int
	RefereeBonus  int
}

type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByReferralCode(ctx context.Context, code string) (*domain.User, error)
	// Redeem applies a referral redemption atomically: the referrer gains the
	// bonus and the referred-user link, the redeemer gains the referee bonus
	// and the set-once used code.
	Redeem(ctx context.Context, in RedeemInput) error
	// AddLoyaltyPoints adjusts the balance by delta, floored at zero.
	AddLoyaltyPoints(ctx context.Context, userID string, delta int) error
}
