package ports

import (
	"context"

	"github.com/jobnexus/jobboard/internal/core/domain"
)

// IdentityFinder is the read side of the identity store used by the role gate.
// FindByID returns domain.ErrUserNotFound when the identity does not exist; any
// other error means the store itself failed.
type IdentityFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// IdentityRepository defines the persistence operations for identities.
type IdentityRepository interface {
	IdentityFinder
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role   domain.Role // empty = any
	Search string      // partial match on email or name
	Page   int         // 1-based
	Limit  int
}
