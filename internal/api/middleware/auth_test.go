package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jinlabs/users-management/internal/core/domain"
	"github.com/jinlabs/users-management/internal/infrastructure/security"
)

var testKey = []byte("middleware-test-key-0123456789abcdef")

type mapResolver struct {
	users map[string]*domain.User
	calls int
}

func (r *mapResolver) LoadByEmail(_ context.Context, email string) (*domain.User, error) {
	r.calls++
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func newResolver() *mapResolver {
	return &mapResolver{users: map[string]*domain.User{
		"admin@x.com": {ID: 1, Email: "admin@x.com", Role: domain.RoleAdmin},
		"user@x.com":  {ID: 2, Email: "user@x.com", Role: domain.RoleUser},
	}}
}

func newTestCodec(t *testing.T, opts ...security.Option) *security.JWTCodec {
	t.Helper()
	c, err := security.NewJWTCodec(testKey, opts...)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return c
}

func issue(t *testing.T, c *security.JWTCodec, email string) string {
	t.Helper()
	tok, err := c.Issue(email, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

// runAuthenticate runs the middleware once and returns the principal seen by
// the next handler and how many times next ran.
func runAuthenticate(t *testing.T, codec *security.JWTCodec, resolver *mapResolver, header string, pre *Principal) (*Principal, int) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/get-profile", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if pre != nil {
		AttachPrincipal(c, pre)
	}

	var seen *Principal
	calls := 0
	h := Authenticate(codec, resolver, zerolog.Nop())(func(c echo.Context) error {
		calls++
		seen, _ = PrincipalFrom(c)
		if fromCtx, ok := PrincipalFromContext(c.Request().Context()); ok && fromCtx != seen {
			t.Fatalf("echo and request contexts disagree on the principal")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return seen, calls
}

func TestAuthenticate_ValidToken(t *testing.T) {
	codec := newTestCodec(t)
	p, calls := runAuthenticate(t, codec, newResolver(), "Bearer "+issue(t, codec, "admin@x.com"), nil)

	if calls != 1 {
		t.Fatalf("expected next once, got %d", calls)
	}
	if p == nil || p.User.Email != "admin@x.com" || p.Role != domain.RoleAdmin {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestAuthenticate_SchemeIsCaseInsensitive(t *testing.T) {
	codec := newTestCodec(t)
	p, _ := runAuthenticate(t, codec, newResolver(), "bearer "+issue(t, codec, "user@x.com"), nil)
	if p == nil || p.Role != domain.RoleUser {
		t.Fatalf("expected principal for lower-case scheme, got %+v", p)
	}
}

func TestAuthenticate_Unauthenticated(t *testing.T) {
	codec := newTestCodec(t)
	other, err := security.NewJWTCodec([]byte("some-other-key-0123456789abcdef0123"))
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin@x.com"}).SignedString([]byte("nope"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := map[string]string{
		"no header":       "",
		"blank header":    "   ",
		"basic scheme":    "Basic YWRtaW46cGFzcw==",
		"short header":    "Bear",
		"empty token":     "Bearer ",
		"garbage token":   "Bearer not.a.token",
		"wrong key":       "Bearer " + issue(t, other, "admin@x.com"),
		"foreign token":   "Bearer " + foreign,
		"unknown subject": "Bearer " + issue(t, codec, "ghost@x.com"),
		"no space":        "Bearer" + issue(t, codec, "admin@x.com"),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			p, calls := runAuthenticate(t, codec, newResolver(), header, nil)
			if calls != 1 {
				t.Fatalf("expected next once, got %d", calls)
			}
			if p != nil {
				t.Fatalf("expected no principal, got %+v", p)
			}
		})
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, security.WithClock(func() time.Time { return now }))
	tok := issue(t, codec, "admin@x.com")

	now = now.Add(security.TokenTTL)
	p, calls := runAuthenticate(t, codec, newResolver(), "Bearer "+tok, nil)
	if calls != 1 || p != nil {
		t.Fatalf("expired token must leave the request unauthenticated (calls=%d, p=%+v)", calls, p)
	}
}

func TestAuthenticate_AlreadyAuthenticated(t *testing.T) {
	codec := newTestCodec(t)
	resolver := newResolver()
	pre := &Principal{User: resolver.users["user@x.com"], Role: domain.RoleUser}

	p, calls := runAuthenticate(t, codec, resolver, "Bearer "+issue(t, codec, "admin@x.com"), pre)
	if calls != 1 {
		t.Fatalf("expected next once, got %d", calls)
	}
	if p != pre {
		t.Fatalf("existing principal must not be replaced")
	}
	if resolver.calls != 0 {
		t.Fatalf("resolver must not be consulted when a principal is attached")
	}
}
