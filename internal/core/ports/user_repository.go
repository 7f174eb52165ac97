package ports

import (
	"context"

	"github.com/jinlabs/users-management/internal/core/domain"
)

// UserRepository defines the persistence operations of the user directory.
// Lookups that miss return domain.ErrUserNotFound; a duplicate email on
// Create or Update returns domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
