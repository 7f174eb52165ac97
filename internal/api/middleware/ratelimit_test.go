package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func runRateLimit(t *testing.T, l *stubLimiter) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:51000"
	req.Header.Set(echo.HeaderXRealIP, "198.51.100.1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := RateLimit(l, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func TestRateLimit_Allows(t *testing.T) {
	l := &stubLimiter{allow: true}
	rec, called := runRateLimit(t, l)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
	if len(l.keys) != 1 || l.keys[0] != "203.0.113.7" {
		t.Fatalf("expected limiter keyed by client ip, got %v", l.keys)
	}
}

func TestRateLimit_Rejects(t *testing.T) {
	rec, called := runRateLimit(t, &stubLimiter{allow: false})
	if called {
		t.Fatalf("next must not run")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	rec, called := runRateLimit(t, &stubLimiter{err: errors.New("redis down")})
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("limiter errors must not block requests, got %d", rec.Code)
	}
}
