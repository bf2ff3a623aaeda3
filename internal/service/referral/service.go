package referral

import (
	"context"
	"errors"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	userrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/user"
)

// Referral bonuses, in loyalty points.
const (
	ReferrerBonus = 75
	RefereeBonus  = 25
)

var (
	// ErrCodeRequired is returned when no code is supplied.
	ErrCodeRequired = errors.New("referral code required")
	// ErrSelfReferral is returned when a user redeems their own code.
	ErrSelfReferral = errors.New("cannot redeem your own referral code")
	// ErrAlreadyRedeemed is returned when the caller has redeemed a code before.
	ErrAlreadyRedeemed = errors.New("a referral code was already redeemed")
	// ErrDuplicateReferral is returned when the referrer already recorded the caller.
	ErrDuplicateReferral = errors.New("user already referred by this referrer")
)

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByReferralCode(ctx context.Context, code string) (*domain.User, error)
	Redeem(ctx context.Context, in userrepo.RedeemInput) error
}

// Service applies one-time referral-code redemptions between two accounts.
type Service struct {
	users userRepo
}

// New creates a Service.
func New(users userrepo.Repository) *Service {
	return &Service{users: users}
}

// Result reports the points granted by a successful redemption.
type Result struct {
	ReferrerPoints int `json:"pointsParrain"`
	RefereePoints  int `json:"pointsFilleul"`
}

// Redeem validates and applies the redemption of code by the current user.
// Both account updates are committed atomically by the repository.
func (s *Service) Redeem(ctx context.Context, currentUserID, code string) (*Result, error) {
	if code == "" {
		return nil, ErrCodeRequired
	}

	user, err := s.users.GetByID(ctx, currentUserID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrInactiveAccount
	}
	if user.ReferralCodeUsed != nil {
		return nil, ErrAlreadyRedeemed
	}

	referrer, err := s.users.GetByReferralCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if referrer.ID == user.ID {
		return nil, ErrSelfReferral
	}
	for _, id := range referrer.ReferredUsers {
		if id == user.ID {
			return nil, ErrDuplicateReferral
		}
	}

	err = s.users.Redeem(ctx, userrepo.RedeemInput{
		ReferrerID:    referrer.ID,
		ReferredID:    user.ID,
		Code:          code,
		ReferrerBonus: ReferrerBonus,
		RefereeBonus:  RefereeBonus,
	})
	if err != nil {
		// A concurrent redemption slipped in between the checks and the write.
		switch {
		case errors.Is(err, userrepo.ErrCodeAlreadyUsed):
			return nil, ErrAlreadyRedeemed
		case errors.Is(err, domain.ErrAlreadyExists):
			return nil, ErrDuplicateReferral
		}
		return nil, err
	}

	return &Result{ReferrerPoints: ReferrerBonus, RefereePoints: RefereeBonus}, nil
}
