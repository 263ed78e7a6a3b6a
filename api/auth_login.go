package api

import (
	"net/http"

	"bitwise74/course-api/apperr"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) AuthLogin(c *gin.Context) {
	var data loginBody
	if err := bind(c, &data); err != nil {
		fail(c, err)
		return
	}

	if data.Email == "" {
		fail(c, apperr.Validation("Email field can't be empty"))
		return
	}

	if data.Password == "" {
		fail(c, apperr.Validation("Password field can't be empty"))
		return
	}

	if err := a.Auth.Login(c.Request.Context(), data.Email, data.Password); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login code sent to your email",
		"email":   data.Email,
	})
}

func (a *API) AuthLogout(c *gin.Context) {
	token := c.MustGet("token").(string)

	if err := a.Auth.Logout(c.Request.Context(), token); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
