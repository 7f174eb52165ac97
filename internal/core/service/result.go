package service

import (
	"net/http"

	"github.com/jinlabs/users-management/internal/core/ports"
)

const (
	loginExpirationLabel   = "24Hrs"
	refreshExpirationLabel = "24Hr"
)

func okResult(msg string) ports.Result {
	return ports.Result{StatusCode: http.StatusOK, Message: msg}
}

func notFoundResult(msg string) ports.Result {
	return ports.Result{StatusCode: http.StatusNotFound, Message: msg}
}

// messageResult reports a failure in the message field, the shape used by the
// directory operations.
func messageResult(status int, msg string) ports.Result {
	return ports.Result{StatusCode: status, Message: msg}
}

// errorResult reports a failure in the error field, the shape used by
// registration and login.
func errorResult(status int, err error) ports.Result {
	return ports.Result{StatusCode: status, Error: err.Error()}
}
