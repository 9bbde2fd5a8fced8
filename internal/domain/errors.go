package domain

import "errors"

// Sentinel errors shared across services and repositories. Controllers map them to HTTP
// status codes with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingToken       = errors.New("no token")
	ErrInvalidToken       = errors.New("invalid token")
)
