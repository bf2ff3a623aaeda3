package referral

import (
	"context"
	"errors"
	"testing"

	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	userrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/user"
)

// memoryRepo is a lightweight in-memory user repository for tests.
type memoryRepo struct {
	users     map[string]*domain.User
	redeemErr error
}

func newMemoryRepo(users ...*domain.User) *memoryRepo {
	r := &memoryRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memoryRepo) GetByReferralCode(_ context.Context, code string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ReferralCode == code {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) Redeem(_ context.Context, in userrepo.RedeemInput) error {
	if r.redeemErr != nil {
		return r.redeemErr
	}
	referrer := r.users[in.ReferrerID]
	referred := r.users[in.ReferredID]
	referrer.ReferredUsers = append(referrer.ReferredUsers, in.ReferredID)
	referrer.LoyaltyPoints += in.ReferrerBonus
	referrer.ReferralPoints += in.ReferrerBonus
	referrer.TotalEarned += in.ReferrerBonus
	referred.LoyaltyPoints += in.RefereeBonus
	referred.TotalEarned += in.RefereeBonus
	code := in.Code
	referred.ReferralCodeUsed = &code
	return nil
}

func activeUser(id, code string) *domain.User {
	return &domain.User{ID: id, ReferralCode: code, Active: true, ReferredUsers: []string{}}
}

func TestRedeemSuccess(t *testing.T) {
	repo := newMemoryRepo(activeUser("parrain", "OM-AAAA"), activeUser("filleul", "OM-BBBB"))
	svc := &Service{users: repo}

	res, err := svc.Redeem(context.Background(), "filleul", "OM-AAAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ReferrerPoints != 75 || res.RefereePoints != 25 {
		t.Fatalf("unexpected result %+v", res)
	}

	referrer := repo.users["parrain"]
	if referrer.LoyaltyPoints != 75 || referrer.ReferralPoints != 75 {
		t.Fatalf("referrer points: %+v", referrer)
	}
	count := 0
	for _, id := range referrer.ReferredUsers {
		if id == "filleul" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected referee exactly once in referred set, got %d", count)
	}

	referee := repo.users["filleul"]
	if referee.LoyaltyPoints != 25 {
		t.Fatalf("referee points: %d", referee.LoyaltyPoints)
	}
	if referee.ReferralCodeUsed == nil || *referee.ReferralCodeUsed != "OM-AAAA" {
		t.Fatalf("referee code not recorded: %+v", referee.ReferralCodeUsed)
	}
}

func TestRedeemCodeRequired(t *testing.T) {
	svc := &Service{users: newMemoryRepo()}
	if _, err := svc.Redeem(context.Background(), "u1", ""); !errors.Is(err, ErrCodeRequired) {
		t.Fatalf("expected ErrCodeRequired, got %v", err)
	}
}

func TestRedeemUnknownCode(t *testing.T) {
	repo := newMemoryRepo(activeUser("u1", "OM-AAAA"))
	svc := &Service{users: repo}
	if _, err := svc.Redeem(context.Background(), "u1", "OM-NOPE"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedeemSelfReferral(t *testing.T) {
	repo := newMemoryRepo(activeUser("u1", "OM-AAAA"))
	svc := &Service{users: repo}
	if _, err := svc.Redeem(context.Background(), "u1", "OM-AAAA"); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("expected ErrSelfReferral, got %v", err)
	}
}

func TestRedeemTwiceFails(t *testing.T) {
	repo := newMemoryRepo(
		activeUser("parrain", "OM-AAAA"),
		activeUser("autre", "OM-CCCC"),
		activeUser("filleul", "OM-BBBB"),
	)
	svc := &Service{users: repo}

	if _, err := svc.Redeem(context.Background(), "filleul", "OM-AAAA"); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	// Second redemption, even of a different code, is refused.
	if _, err := svc.Redeem(context.Background(), "filleul", "OM-CCCC"); !errors.Is(err, ErrAlreadyRedeemed) {
		t.Fatalf("expected ErrAlreadyRedeemed, got %v", err)
	}
}

func TestRedeemDuplicateReferral(t *testing.T) {
	referrer := activeUser("parrain", "OM-AAAA")
	referrer.ReferredUsers = []string{"filleul"}
	repo := newMemoryRepo(referrer, activeUser("filleul", "OM-BBBB"))
	svc := &Service{users: repo}

	if _, err := svc.Redeem(context.Background(), "filleul", "OM-AAAA"); !errors.Is(err, ErrDuplicateReferral) {
		t.Fatalf("expected ErrDuplicateReferral, got %v", err)
	}
}

func TestRedeemInactiveAccount(t *testing.T) {
	u := activeUser("filleul", "OM-BBBB")
	u.Active = false
	repo := newMemoryRepo(activeUser("parrain", "OM-AAAA"), u)
	svc := &Service{users: repo}

	if _, err := svc.Redeem(context.Background(), "filleul", "OM-AAAA"); !errors.Is(err, domain.ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestRedeemWriteFailureLeavesNoPartialState(t *testing.T) {
	repo := newMemoryRepo(activeUser("parrain", "OM-AAAA"), activeUser("filleul", "OM-BBBB"))
	repo.redeemErr = errors.New("write failed")
	svc := &Service{users: repo}

	if _, err := svc.Redeem(context.Background(), "filleul", "OM-AAAA"); err == nil {
		t.Fatalf("expected error")
	}
	if repo.users["parrain"].LoyaltyPoints != 0 || repo.users["filleul"].LoyaltyPoints != 0 {
		t.Fatalf("no points may be committed when the write fails")
	}
	if repo.users["filleul"].ReferralCodeUsed != nil {
		t.Fatalf("code must not be recorded when the write fails")
	}
}

func TestRedeemConcurrentConflictMapsToDuplicate(t *testing.T) {
	repo := newMemoryRepo(activeUser("parrain", "OM-AAAA"), activeUser("filleul", "OM-BBBB"))
	repo.redeemErr = domain.ErrAlreadyExists
	svc := &Service{users: repo}

	if _, err := svc.Redeem(context.Background(), "filleul", "OM-AAAA"); !errors.Is(err, ErrDuplicateReferral) {
		t.Fatalf("expected ErrDuplicateReferral, got %v", err)
	}
}

func TestRedeemConcurrentCodeUseMapsToAlreadyRedeemed(t *testing.T) {
	// Another redemption by the same user committed between the read and the
	// write: the set-once code is taken, which is an already-redeemed
	// condition, not a duplicate referral.
	repo := newMemoryRepo(activeUser("parrain", "OM-AAAA"), activeUser("filleul", "OM-BBBB"))
	repo.redeemErr = userrepo.ErrCodeAlreadyUsed
	svc := &Service{users: repo}

	if _, err := svc.Redeem(context.Background(), "filleul", "OM-AAAA"); !errors.Is(err, ErrAlreadyRedeemed) {
		t.Fatalf("expected ErrAlreadyRedeemed, got %v", err)
	}
}
