package domain

import "time"

// Role separates regular shoppers from administrators.
type Role string

const (
	RoleUser  Role = "utilisateur"
	RoleAdmin Role = "admin"
)

// User is a shop account. Loyalty points drive the tier discount; the
// referral fields implement the one-time redemption rules: ReferralCodeUsed
// is set at most once in the account's lifetime and ReferredUsers holds each
// other account at most once.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"nom"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	Phone         string    `json:"telephone,omitempty"`
	Active        bool      `json:"actif"`
	LoyaltyPoints int       `json:"pointsFidelite"`
	ReferralCode  string    `json:"codeParrainage"`
	// ReferralCodeUsed is the code this user redeemed, nil until the single
	// allowed redemption happens.
	ReferralCodeUsed *string   `json:"codeParrainUtilise,omitempty"`
	ReferredUsers    []string  `json:"personnesParrainees"`
	ReferralPoints   int       `json:"pointsParrainage"`
	TotalEarned      int       `json:"totalEarned"`
	CreatedAt        time.Time `json:"creeLe"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
