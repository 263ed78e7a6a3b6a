package api

import (
	"net/http"

	"bitwise74/course-api/model"

	"github.com/gin-gonic/gin"
)

// Validate answers 200 while the session token is live. The gate in
// front of it does the actual work.
func (a *API) Validate(c *gin.Context) {
	s := c.MustGet("session").(*model.SessionToken)

	c.JSON(http.StatusOK, gin.H{
		"userID":    s.UserID,
		"expiresAt": s.ExpiresAt,
	})
}
