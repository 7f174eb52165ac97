package domain

import "errors"

var (
	ErrInvalidSignature   = errors.New("invalid token signature")
	ErrTokenExpired       = errors.New("token expired")
	ErrUnknownSubject     = errors.New("token subject has no matching user")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role must be one of ADMIN, USER")
	ErrIDNotAssigned      = errors.New("store did not assign a user id")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
)
