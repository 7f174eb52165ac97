package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jinlabs/users-management/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"echo error", echo.NewHTTPError(http.StatusNotFound, "Not Found"), http.StatusNotFound, "Not Found"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "authentication required"},
		{"forbidden wrapped", fmt.Errorf("check: %w", domain.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"not found", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"unexpected", errors.New("db exploded"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.body) {
				t.Fatalf("expected body to contain %q, got %s", tc.body, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "db exploded") {
				t.Fatalf("internal error leaked")
			}
		})
	}
}
