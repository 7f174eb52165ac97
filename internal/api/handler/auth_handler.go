package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/jinlabs/users-management/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email,max=320"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"max=255"`
	City     string `json:"city"     validate:"max=255"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN USER"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Token string `json:"token" validate:"required"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  ports.Result
// @Failure      400   {object}  ports.Result
// @Failure      500   {object}  ports.Result
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	return respond(c, h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		City:     req.City,
		Role:     req.Role,
	}))
}

// Login authenticates a user and returns an access and a refresh token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.Result
// @Failure      400   {object}  ports.Result
// @Failure      500   {object}  ports.Result
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return respond(c, h.authService.Login(c.Request().Context(), req.Email, req.Password))
}

// Refresh exchanges a refresh token for a new access token.
//
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  ports.Result
// @Failure      400   {object}  ports.Result
// @Failure      500   {object}  ports.Result
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return respond(c, h.authService.Refresh(c.Request().Context(), req.Token))
}
