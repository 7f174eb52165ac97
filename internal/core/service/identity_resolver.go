package service

import (
	"context"
	"fmt"

	"github.com/jinlabs/users-management/internal/core/domain"
	"github.com/jinlabs/users-management/internal/core/ports"
)

// IdentityResolver loads identities by credential subject straight from the
// store. There is no cache and no retry.
type IdentityResolver struct {
	repo ports.UserRepository
}

func NewIdentityResolver(repo ports.UserRepository) *IdentityResolver {
	return &IdentityResolver{repo: repo}
}

var _ ports.IdentityResolver = (*IdentityResolver)(nil)

func (r *IdentityResolver) LoadByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load identity %q: %w", email, err)
	}
	return user, nil
}
