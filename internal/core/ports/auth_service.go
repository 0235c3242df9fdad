package ports

import (
	"context"

	"github.com/jobnexus/jobboard/internal/core/domain"
)

// RegisterInput carries the self-service registration fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthService implements registration, login and self-service profile reads.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
}

// LoginLimiter throttles repeated login attempts per email.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	Reset(ctx context.Context, email string) error
}

// AdminService implements admin-only identity management.
type AdminService interface {
	ListUsers(ctx context.Context, filter UserFilter) (*Page[*domain.User], error)
	ChangeRole(ctx context.Context, actorID, userID string, role domain.Role) (*domain.User, error)
}
