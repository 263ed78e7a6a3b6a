package middleware

import (
	"context"
	"strings"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TokenValidator interface {
	Validate(ctx context.Context, token string) (*model.SessionToken, error)
}

// NewAuthMiddleware guards protected routes. It expects an
// "Authorization: Bearer <token>" header and sets userID, token and
// session on the context for the handlers behind it.
func NewAuthMiddleware(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apperr.Abort(c, apperr.Unauthenticated)
			return
		}

		rec, err := v.Validate(c.Request.Context(), token)
		if err != nil {
			if apperr.From(err) == apperr.ServerError {
				zap.L().Error("Failed to validate session token", zap.Error(err), zap.String("requestID", requestID))
			}

			apperr.Abort(c, err)
			return
		}

		c.Set("userID", rec.UserID)
		c.Set("token", token)
		c.Set("session", rec)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
