package middleware

import (
	"errors"
	"net/http"

	"bitwise74/course-api/apperr"

	"github.com/gin-gonic/gin"
)

var ErrBodyTooLarge = &apperr.Error{
	Code:    "BODY_TOO_LARGE",
	Status:  http.StatusRequestEntityTooLarge,
	Message: "Request body size exceeds limit",
}

// BodySizeLimiter caps request bodies at maxBytes. Handlers that fail to
// bind an oversized body see *http.MaxBytesError.
func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fast reject for legit requests
		if c.Request.ContentLength > maxBytes {
			apperr.Abort(c, ErrBodyTooLarge)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from reading past the limit
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
