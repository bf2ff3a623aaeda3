package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInactiveAccount indicates the account exists but has been deactivated.
	ErrInactiveAccount = errors.New("inactive account")
	// ErrForbidden indicates the caller is authenticated but not allowed.
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientStock indicates a size variant cannot cover the
	// requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)
