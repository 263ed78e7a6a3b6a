// Package apperr contains the error codes surfaced to API clients.
// Every failure a handler can report maps to exactly one of these.
package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	DuplicateEmail = &Error{
		Code:    "DUPLICATE_EMAIL",
		Status:  http.StatusConflict,
		Message: "This email is already registered. Please login or use a different email",
	}
	InvalidCredentials = &Error{
		Code:    "INVALID_CREDENTIALS",
		Status:  http.StatusUnauthorized,
		Message: "Invalid credentials",
	}
	UnverifiedAccount = &Error{
		Code:    "UNVERIFIED_ACCOUNT",
		Status:  http.StatusForbidden,
		Message: "Email not verified",
	}
	InvalidOrExpiredCode = &Error{
		Code:    "INVALID_OR_EXPIRED_CODE",
		Status:  http.StatusBadRequest,
		Message: "Invalid or expired code",
	}
	EmailDeliveryFailed = &Error{
		Code:    "EMAIL_DELIVERY_FAILED",
		Status:  http.StatusBadGateway,
		Message: "Failed to send verification email",
	}
	Unauthenticated = &Error{
		Code:    "UNAUTHENTICATED",
		Status:  http.StatusUnauthorized,
		Message: "No auth token",
	}
	InvalidToken = &Error{
		Code:    "INVALID_TOKEN",
		Status:  http.StatusUnauthorized,
		Message: "Invalid token",
	}
	SessionExpired = &Error{
		Code:    "SESSION_EXPIRED",
		Status:  http.StatusUnauthorized,
		Message: "Session expired",
	}
	NotFound = &Error{
		Code:    "NOT_FOUND",
		Status:  http.StatusNotFound,
		Message: "Not found",
	}
	ServerError = &Error{
		Code:    "SERVER_ERROR",
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	}
)

// Validation wraps a validator message into a 400 response.
func Validation(msg string) *Error {
	return &Error{
		Code:    "VALIDATION_FAILED",
		Status:  http.StatusBadRequest,
		Message: msg,
	}
}

// Conflict is used for state clashes that are not account related,
// e.g. enrolling twice into the same course.
func Conflict(msg string) *Error {
	return &Error{
		Code:    "CONFLICT",
		Status:  http.StatusConflict,
		Message: msg,
	}
}

// From returns the taxonomy entry carried by err. Anything unknown is a
// ServerError so internal details never reach the caller.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return ServerError
}

// Response is the JSON body sent for e
func (e *Error) Response(requestID string) gin.H {
	return gin.H{
		"error":     e.Message,
		"code":      e.Code,
		"requestID": requestID,
	}
}

// Abort stops the handler chain with the taxonomy entry for err
func Abort(c *gin.Context, err error) {
	e := From(err)
	c.AbortWithStatusJSON(e.Status, e.Response(c.GetString("requestID")))
}
