package ports

import (
	"context"

	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

// UserRepository defines the persistence operations on user accounts.
// Lookups report a miss as domain.ErrUserNotFound; inserts and updates that
// collide on email report domain.ErrUserExists.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Insert stores user, assigning its ID when empty, and returns the stored row.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update applies the non-nil fields of changes and returns the updated row.
	Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error)
	// Delete removes the row and returns it as it was before deletion.
	Delete(ctx context.Context, id string) (*domain.User, error)
	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
