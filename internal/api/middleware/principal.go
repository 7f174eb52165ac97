package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/jinlabs/users-management/internal/core/domain"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	User *domain.User
	Role domain.Role
}

const principalKey = "principal"

type principalCtxKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the principal attached to ctx, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return p, ok && p != nil
}

// PrincipalFrom returns the principal attached to the echo context, if any.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok && p != nil
}

// AttachPrincipal binds p to the echo context and its request context.
func AttachPrincipal(c echo.Context, p *Principal) {
	c.Set(principalKey, p)
	req := c.Request()
	c.SetRequest(req.WithContext(WithPrincipal(req.Context(), p)))
}
