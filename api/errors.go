package api

import (
	"net/http"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	ErrLessonNotFound = &apperr.Error{
		Code:    "NOT_FOUND",
		Status:  http.StatusNotFound,
		Message: "Lesson not found",
	}
	ErrCourseNotFound = &apperr.Error{
		Code:    "NOT_FOUND",
		Status:  http.StatusNotFound,
		Message: "Course not found",
	}
	ErrQuizNotFound = &apperr.Error{
		Code:    "QUIZ_NOT_FOUND",
		Status:  http.StatusNotFound,
		Message: "Quiz not found",
	}
	errInvalidBody = apperr.Validation("Invalid request body")
)

// fail responds with the taxonomy entry for err. Unexpected errors are
// logged here and never reach the client.
func fail(c *gin.Context, err error) {
	requestID := c.GetString("requestID")

	e := apperr.From(err)
	if e == apperr.ServerError {
		zap.L().Error("Request failed", zap.Error(err), zap.String("requestID", requestID), zap.String("path", c.FullPath()))
	}

	c.AbortWithStatusJSON(e.Status, e.Response(requestID))
}

// bind decodes the JSON body into dst
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if middleware.IsBodyTooLarge(err) {
			return middleware.ErrBodyTooLarge
		}

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
		return errInvalidBody
	}

	return nil
}

// notFoundAs swaps a generic not found error for a more specific one
func notFoundAs(err error, nf *apperr.Error) error {
	if apperr.From(err) == apperr.NotFound {
		return nf
	}

	return err
}
