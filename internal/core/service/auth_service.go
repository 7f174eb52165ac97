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
	"github.com/jinlabs/users-management/internal/pkg/metrics"
)

// AuthDependencies groups the collaborators of AuthService.
type AuthDependencies struct {
	Users    ports.UserRepository
	Resolver ports.IdentityResolver
	Hasher   ports.PasswordHasher
	Tokens   ports.TokenCodec
	Events   ports.EventPublisher
	Logger   zerolog.Logger
}

// AuthService implements registration, login and token refresh.
type AuthService struct {
	users    ports.UserRepository
	resolver ports.IdentityResolver
	hasher   ports.PasswordHasher
	tokens   ports.TokenCodec
	events   ports.EventPublisher
	log      zerolog.Logger
}

func NewAuthService(deps AuthDependencies) *AuthService {
	events := deps.Events
	if events == nil {
		events = discardPublisher{}
	}
	resolver := deps.Resolver
	if resolver == nil {
		resolver = NewIdentityResolver(deps.Users)
	}
	return &AuthService{
		users:    deps.Users,
		resolver: resolver,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		events:   events,
		log:      deps.Logger,
	}
}

var _ ports.AuthService = (*AuthService)(nil)

// Register hashes the password and stores a new identity. The store must
// assign a positive id for the registration to count as successful.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) ports.Result {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return errorResult(http.StatusBadRequest, domain.ErrInvalidCredentials)
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return errorResult(http.StatusBadRequest, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("register: hash password")
		return errorResult(http.StatusInternalServerError, err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        strings.TrimSpace(in.Email),
		Name:         in.Name,
		City:         in.City,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.log.Error().Err(err).Str("email", in.Email).Msg("register: create user")
		return errorResult(http.StatusInternalServerError, err)
	}
	if created == nil || created.ID <= 0 {
		s.log.Error().Str("email", in.Email).Msg("register: store returned no id")
		return errorResult(http.StatusInternalServerError, domain.ErrIDNotAssigned)
	}

	s.events.Publish(ctx, domain.NewUserEvent(domain.UserRegistered, created))
	s.log.Info().Int64("user_id", created.ID).Str("role", created.Role.String()).Msg("user registered")

	res := okResult("User Saved Successfully")
	res.User = created
	return res
}

// Login verifies email and password and mints an access and a refresh token.
// Unknown users, wrong passwords and internal faults share one failure shape.
func (s *AuthService) Login(ctx context.Context, email, password string) ports.Result {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.log.Warn().Err(err).Str("email", email).Msg("login failed")
		return errorResult(http.StatusInternalServerError, err)
	}

	access, err := s.tokens.Issue(user.Email, nil)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.log.Error().Err(err).Msg("login: issue access token")
		return errorResult(http.StatusInternalServerError, err)
	}
	refresh, err := s.tokens.Issue(user.Email, map[string]any{})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.log.Error().Err(err).Msg("login: issue refresh token")
		return errorResult(http.StatusInternalServerError, err)
	}
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")

	res := okResult("Successfully Logged In")
	res.Token = access
	res.RefreshToken = refresh
	res.ExpirationTime = loginExpirationLabel
	return res
}

// Refresh mints a new access token from a still-valid refresh token and echoes
// the refresh token back. A refresh token that fails validation yields a 200
// result without a token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) ports.Result {
	email, err := s.tokens.ExtractSubject(refreshToken)
	if err != nil {
		return messageResult(http.StatusInternalServerError, err.Error())
	}
	user, err := s.resolver.LoadByEmail(ctx, email)
	if err != nil {
		return messageResult(http.StatusInternalServerError, err.Error())
	}

	res := ports.Result{StatusCode: http.StatusOK}
	if err := s.tokens.Validate(refreshToken, user); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("refresh token failed validation, no token issued")
		return res
	}

	access, err := s.tokens.Issue(user.Email, nil)
	if err != nil {
		return messageResult(http.StatusInternalServerError, err.Error())
	}
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()

	res.Token = access
	res.RefreshToken = refreshToken
	res.ExpirationTime = refreshExpirationLabel
	res.Message = "Successfully Refreshed Token"
	return res
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := s.resolver.LoadByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if s.hasher.Compare(user.PasswordHash, password) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
