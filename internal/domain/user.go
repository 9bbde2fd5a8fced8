package domain

import (
	"context"
	"time"
)

// Role is the fixed role a user signs up with. It never changes afterwards.
type Role string

const (
	RoleOrganizer   Role = "organizer"
	RoleParticipant Role = "participant"
)

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	return r == RoleOrganizer || r == RoleParticipant
}

// User represents a registered account.
// swagger:model User
type User struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser returns a new User with the given fields.
func NewUser(name, email, passwordHash string, role Role, createdAt time.Time) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    createdAt,
	}
}

// Identity is the authenticated caller carried by a verified session token.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// PasswordHasher hashes and verifies passwords. Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (hash string, err error)
	Compare(hash, password string) error
}

// TokenIssuer issues signed session tokens carrying the caller's identity.
type TokenIssuer interface {
	Issue(email string, role Role) (string, error)
}

// TokenVerifier verifies a session token and returns the identity it carries.
// Every failure is reported as ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// UserRepository defines the interface for user storage.
// Create must fail with ErrDuplicateEmail atomically when the email is already stored.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}

// AuthService defines signup, credential verification and session issuance.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string, role Role) (*User, error)
	Verify(ctx context.Context, email, password string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (string, error)
}
