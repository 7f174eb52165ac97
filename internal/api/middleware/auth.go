package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jinlabs/users-management/internal/core/domain"
	"github.com/jinlabs/users-management/internal/core/ports"
	"github.com/jinlabs/users-management/internal/pkg/metrics"
)

const bearerPrefix = "Bearer "

// Authenticate resolves a bearer token into a Principal. It never rejects a
// request: every failure leaves the request unauthenticated and the access
// policy decides what happens next.
func Authenticate(tokens ports.TokenCodec, resolver ports.IdentityResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			outcome := authenticate(c, tokens, resolver)
			metrics.AuthenticationResultsTotal.WithLabelValues(outcome).Inc()
			log.Debug().
				Str("result", outcome).
				Str("path", c.Request().URL.Path).
				Msg("bearer authentication")
			return next(c)
		}
	}
}

func authenticate(c echo.Context, tokens ports.TokenCodec, resolver ports.IdentityResolver) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.TrimSpace(header) == "" {
		return "anonymous"
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "bad_scheme"
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "bad_scheme"
	}

	email, err := tokens.ExtractSubject(token)
	if err != nil || email == "" {
		return "invalid_token"
	}
	if _, ok := PrincipalFrom(c); ok {
		return "already_authenticated"
	}

	user, err := resolver.LoadByEmail(c.Request().Context(), email)
	if err != nil {
		return "unknown_subject"
	}
	if err := tokens.Validate(token, user); err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return "expired"
		}
		return "rejected"
	}

	AttachPrincipal(c, &Principal{User: user, Role: user.Role})
	return "authenticated"
}
