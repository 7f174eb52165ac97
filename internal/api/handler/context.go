package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jinlabs/users-management/internal/api/middleware"
	"github.com/jinlabs/users-management/internal/core/ports"
)

// respond writes res with its own status code.
func respond(c echo.Context, res ports.Result) error {
	return c.JSON(res.StatusCode, res)
}

func badRequest(c echo.Context, msg string) error {
	return respond(c, ports.Result{StatusCode: http.StatusBadRequest, Error: msg})
}

// bindAndValidate decodes the JSON body into req and runs the validator.
// On failure it has already written the 400 response and returns false.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return false, badRequest(c, err.Error())
	}
	return true, nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// principalEmail returns the subject of the authenticated request. The access
// policy guarantees a principal on every route that calls it.
func principalEmail(c echo.Context) (string, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return p.User.Email, nil
}
