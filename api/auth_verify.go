package api

import (
	"net/http"

	"bitwise74/course-api/apperr"

	"github.com/gin-gonic/gin"
)

type codeBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func bindCode(c *gin.Context) (*codeBody, error) {
	var data codeBody
	if err := bind(c, &data); err != nil {
		return nil, err
	}

	if data.Email == "" {
		return nil, apperr.Validation("Email field can't be empty")
	}

	if data.Code == "" {
		return nil, apperr.Validation("Code field can't be empty")
	}

	return &data, nil
}

func (a *API) AuthVerifyEmail(c *gin.Context) {
	data, err := bindCode(c)
	if err != nil {
		fail(c, err)
		return
	}

	if err := a.Auth.VerifyEmail(c.Request.Context(), data.Email, data.Code); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
	})
}

func (a *API) AuthVerifyLogin(c *gin.Context) {
	data, err := bindCode(c)
	if err != nil {
		fail(c, err)
		return
	}

	token, user, err := a.Auth.VerifyLogin(c.Request.Context(), data.Email, data.Code)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}
