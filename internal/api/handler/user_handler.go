package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/jinlabs/users-management/internal/core/ports"
)

// UserHandler serves the user directory routes.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type updateUserRequest struct {
	Email    string `json:"email"    validate:"omitempty,email,max=320"`
	Name     string `json:"name"     validate:"max=255"`
	City     string `json:"city"     validate:"max=255"`
	Role     string `json:"role"     validate:"omitempty,oneof=ADMIN USER"`
	Password string `json:"password"`
}

// GetAllUsers lists every user.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.Result
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  ports.Result
// @Router       /admin/get-all-users [get]
func (h *UserHandler) GetAllUsers(c echo.Context) error {
	return respond(c, h.users.GetAllUsers(c.Request().Context()))
}

// GetUserByID returns one user.
//
// @Summary      Get user by id
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  ports.Result
// @Failure      400  {object}  ports.Result
// @Failure      404  {object}  ports.Result
// @Router       /admin/get-users/{id} [get]
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}
	return respond(c, h.users.GetUserByID(c.Request().Context(), id))
}

// UpdateUser overwrites the supplied fields of a user.
//
// @Summary      Update user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  ports.Result
// @Failure      400   {object}  ports.Result
// @Failure      404   {object}  ports.Result
// @Router       /admin/update/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req updateUserRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	return respond(c, h.users.UpdateUser(c.Request().Context(), id, ports.UpdateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		City:     req.City,
		Role:     req.Role,
		Password: req.Password,
	}))
}

// DeleteUser removes a user.
//
// @Summary      Delete user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  ports.Result
// @Failure      400  {object}  ports.Result
// @Failure      404  {object}  ports.Result
// @Router       /admin/delete/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}
	return respond(c, h.users.DeleteUser(c.Request().Context(), id))
}

// GetProfile returns the caller's own record.
//
// @Summary      Current user profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.Result
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  ports.Result
// @Router       /admin/get-profile [get]
// @Router       /adminuser/get-profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	email, err := principalEmail(c)
	if err != nil {
		return err
	}
	return respond(c, h.users.GetMyInfo(c.Request().Context(), email))
}
