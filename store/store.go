// Package store holds the persistence side of the application: the
// credential store, both ledgers and course content. All methods are
// safe for concurrent use; ordering between concurrent calls is
// whatever the database gives.
package store

import (
	"net/http"
	"time"

	"bitwise74/course-api/apperr"
)

var (
	ErrNotFound        = apperr.NotFound
	ErrAlreadyEnrolled = apperr.Conflict("Already enrolled in this course")
	ErrNotEnrolled     = &apperr.Error{
		Code:    "NOT_ENROLLED",
		Status:  http.StatusBadRequest,
		Message: "Not enrolled in this course",
	}
)

// Clock returns the current time. Ledgers take one so expiry can be
// tested without sleeping.
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}

	return c
}
