package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jinlabs/users-management/internal/core/domain"
	"github.com/jinlabs/users-management/internal/core/ports"
)

// UserService implements the directory operations. Every method makes a
// single attempt against the store and folds the outcome into a Result.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	events ports.EventPublisher
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, events ports.EventPublisher, log zerolog.Logger) *UserService {
	if events == nil {
		events = discardPublisher{}
	}
	return &UserService{repo: repo, hasher: hasher, events: events, log: log}
}

var _ ports.UserService = (*UserService)(nil)

func (s *UserService) GetAllUsers(ctx context.Context) ports.Result {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return messageResult(http.StatusInternalServerError, "Error occurred: "+err.Error())
	}
	if len(users) == 0 {
		return notFoundResult("No users found")
	}
	res := okResult("Successful")
	res.Users = users
	return res
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) ports.Result {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return notFoundResult(fmt.Sprintf("User with id '%d' not found", id))
		}
		return messageResult(http.StatusInternalServerError, "Error occurred: "+err.Error())
	}
	res := okResult(fmt.Sprintf("Users with id '%d' found successfully", id))
	res.User = user
	return res
}

// UpdateUser overwrites the non-empty fields of in. The stored password hash
// only changes when a non-empty password is supplied.
func (s *UserService) UpdateUser(ctx context.Context, id int64, in ports.UpdateUserInput) ports.Result {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return notFoundResult("User not found for update")
		}
		return messageResult(http.StatusInternalServerError, "Error occurred while updating user: "+err.Error())
	}

	if in.Role != "" {
		role, err := domain.ParseRole(in.Role)
		if err != nil {
			return messageResult(http.StatusBadRequest, err.Error())
		}
		existing.Role = role
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		existing.Email = email
	}
	if in.Name != "" {
		existing.Name = in.Name
	}
	if in.City != "" {
		existing.City = in.City
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return messageResult(http.StatusInternalServerError, "Error occurred while updating user: "+err.Error())
		}
		existing.PasswordHash = hash
	}
	existing.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.Update(ctx, existing)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", id).Msg("update user")
		return messageResult(http.StatusInternalServerError, "Error occurred while updating user: "+err.Error())
	}

	s.events.Publish(ctx, domain.NewUserEvent(domain.UserUpdated, saved))
	s.log.Info().Int64("user_id", id).Msg("user updated")

	res := okResult("User updated successfully")
	res.User = saved
	return res
}

// DeleteUser removes the user; a missing id leaves the store untouched.
func (s *UserService) DeleteUser(ctx context.Context, id int64) ports.Result {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return notFoundResult("User not found for deletion")
		}
		return messageResult(http.StatusInternalServerError, "Error occurred while deleting user: "+err.Error())
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("user_id", id).Msg("delete user")
		return messageResult(http.StatusInternalServerError, "Error occurred while deleting user: "+err.Error())
	}

	s.events.Publish(ctx, domain.NewUserEvent(domain.UserDeleted, existing))
	s.log.Info().Int64("user_id", id).Msg("user deleted")

	return okResult("User deleted successfully")
}

// GetMyInfo returns the identity behind the authenticated subject.
func (s *UserService) GetMyInfo(ctx context.Context, email string) ports.Result {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return notFoundResult("User not found for update")
		}
		return messageResult(http.StatusInternalServerError, "Error occurred while getting user info: "+err.Error())
	}
	res := okResult("successful")
	res.User = user
	return res
}
