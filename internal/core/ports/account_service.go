package ports

import (
	"context"
	"time"

	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// TokenIssuer signs identity tokens for a principal.
type TokenIssuer interface {
	Issue(p domain.Principal) (token string, expiresAt time.Time, err error)
}

// LoginThrottle limits repeated failed sign-ins for the same email.
type LoginThrottle interface {
	Allowed(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role // defaults to domain.RoleUser when empty
}

// AuthResult is returned by sign-up and sign-in: the public user record and a
// freshly issued token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AccountService is the use-case surface consumed by the HTTP handlers.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ListUsers(ctx context.Context, principal domain.Principal) ([]*domain.User, error)
	GetUser(ctx context.Context, principal domain.Principal, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, principal domain.Principal, id string, in domain.UpdateUserInput) (*domain.User, error)
	DeleteAccount(ctx context.Context, principal domain.Principal, id string) (*domain.User, error)
}
