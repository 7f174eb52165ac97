package ports

import (
	"context"

	"github.com/jinlabs/users-management/internal/core/domain"
)

// Result is the single response shape of every session and directory
// operation. StatusCode carries the outcome (200, 400, 404, 500); callers
// cannot tell failure causes apart beyond it and the free-text fields.
type Result struct {
	StatusCode     int            `json:"statusCode"`
	Error          string         `json:"error,omitempty"`
	Message        string         `json:"message,omitempty"`
	Token          string         `json:"token,omitempty"`
	RefreshToken   string         `json:"refreshToken,omitempty"`
	ExpirationTime string         `json:"expirationTime,omitempty"`
	User           *domain.User   `json:"ourUsers,omitempty"`
	Users          []*domain.User `json:"ourUsersList,omitempty"`
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	City     string
	Role     string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) Result
	Login(ctx context.Context, email, password string) Result
	Refresh(ctx context.Context, refreshToken string) Result
}
