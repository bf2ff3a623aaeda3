package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/meloogk/O-Maillot-Backend/internal/auth"
	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	userrepo "github.com/meloogk/O-Maillot-Backend/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidInput is returned when a required signup field is missing.
	ErrInvalidInput = errors.New("invalid signup input")
	// ErrInvalidCredentials is returned for a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const referralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type tokenIssuer interface {
	Issue(userID string, role domain.Role) (string, error)
}

// Service handles account signup, login and profile access.
type Service struct {
	users  userrepo.Repository
	tokens tokenIssuer
}

// New creates a Service.
func New(users userrepo.Repository, tokens *auth.Manager) *Service {
	return &Service{users: users, tokens: tokens}
}

// SignupInput is the payload for account creation.
type SignupInput struct {
	Name     string `json:"nom"`
	Email    string `json:"email"`
	Password string `json:"motDePasse"`
	Phone    string `json:"telephone"`
}

// AuthResult pairs an account with its bearer token.
type AuthResult struct {
	User  *domain.User `json:"utilisateur"`
	Token string       `json:"token"`
}

// Signup creates an account with a hashed password and a fresh referral code.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || len(in.Password) < 6 {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := domain.User{
		Name:          in.Name,
		Email:         in.Email,
		PasswordHash:  string(hash),
		Role:          domain.RoleUser,
		Phone:         in.Phone,
		Active:        true,
		ReferredUsers: []string{},
	}

	// Referral codes are random, so collisions are possible; retry a few
	// times before surfacing the conflict.
	var created *domain.User
	for attempt := 0; attempt < 3; attempt++ {
		code, err := newReferralCode()
		if err != nil {
			return nil, err
		}
		u.ReferralCode = code

		created, err = s.users.Create(ctx, u)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			if _, lookupErr := s.users.GetByEmail(ctx, in.Email); lookupErr == nil {
				return nil, domain.ErrAlreadyExists
			}
			continue
		}
		return nil, err
	}
	if created == nil {
		return nil, domain.ErrAlreadyExists
	}

	token, err := s.tokens.Issue(created.ID, created.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: created, Token: token}, nil
}

// Login verifies the credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, domain.ErrInactiveAccount
	}

	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

// Profile returns the account for the given id.
func (s *Service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func newReferralCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = referralCodeAlphabet[int(b)%len(referralCodeAlphabet)]
	}
	return fmt.Sprintf("OM-%s", out), nil
}
