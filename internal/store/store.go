package store

import (
	"context"
	"errors"
	"time"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("store: user not found")

	// ErrEmailTaken is returned by Create when another record already
	// holds the email. Callers racing on first-sight provisioning must
	// treat it as a signal to re-fetch, not as a failure.
	ErrEmailTaken = errors.New("store: email already registered")
)

// User is the durable record behind a principal.
type User struct {
	ID              string
	Email           string
	Name            string
	Role            auth.Role
	IsVerified      bool
	Picture         string
	Bio             string
	Skills          []string
	GithubURL       string
	LinkedinURL     string
	PortfolioURL    string
	CompanyName     string
	CompanyDocument string
	PasswordHash    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserStore is the persistence boundary of the identity resolver.
// Implementations must enforce uniqueness of both ID and email.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateRole(ctx context.Context, id string, role auth.Role) error
}
