package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jinlabs/users-management/internal/core/domain"
	"github.com/jinlabs/users-management/internal/pkg/metrics"
)

// Decision is the outcome of evaluating the access policy for a request.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

// Rule grants access to every path under Prefix. An open rule admits anyone;
// otherwise a principal is required and, when Roles is non-empty, its role
// must be one of them.
type Rule struct {
	Prefix string
	Open   bool
	Roles  []domain.Role
}

// Policy is an ordered rule table; the first matching rule wins. Paths no
// rule matches require an authenticated principal.
type Policy struct {
	Rules []Rule
}

// DefaultPolicy is the route table of the users API.
func DefaultPolicy() Policy {
	return Policy{Rules: []Rule{
		{Prefix: "/auth", Open: true},
		{Prefix: "/public", Open: true},
		{Prefix: "/admin", Roles: []domain.Role{domain.RoleAdmin}},
		{Prefix: "/user", Roles: []domain.Role{domain.RoleUser}},
		{Prefix: "/adminuser", Roles: []domain.Role{domain.RoleAdmin, domain.RoleUser}},
	}}
}

// Decide evaluates path against the rule table.
func (p Policy) Decide(path string, principal *Principal) Decision {
	for _, r := range p.Rules {
		if !matchPrefix(path, r.Prefix) {
			continue
		}
		if r.Open {
			return Allow
		}
		if principal == nil {
			return DenyUnauthenticated
		}
		if len(r.Roles) > 0 && !principal.User.HasRole(r.Roles...) {
			return DenyForbidden
		}
		return Allow
	}
	if principal == nil {
		return DenyUnauthenticated
	}
	return Allow
}

// matchPrefix reports whether path is prefix itself or lies beneath it.
func matchPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// Authorize enforces p on every request using the principal attached by
// Authenticate.
func Authorize(p Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, _ := PrincipalFrom(c)
			switch p.Decide(c.Request().URL.Path, principal) {
			case DenyUnauthenticated:
				metrics.AuthorizationDenialsTotal.WithLabelValues("unauthenticated").Inc()
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			case DenyForbidden:
				metrics.AuthorizationDenialsTotal.WithLabelValues("forbidden").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
