package api

import (
	"net/http"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/validators"

	"github.com/gin-gonic/gin"
)

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) AuthRegister(c *gin.Context) {
	var data registerBody
	if err := bind(c, &data); err != nil {
		fail(c, err)
		return
	}

	if err := validators.NameValidator(data.Name); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}

	if err := a.Auth.Register(c.Request.Context(), data.Name, data.Email, data.Password); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Registration successful. Please check your email for the verification code",
		"email":   data.Email,
	})
}
