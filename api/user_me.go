package api

import (
	"net/http"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/validators"

	"github.com/gin-gonic/gin"
)

func (a *API) UserFetch(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	u, err := a.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, u.Public())
}

type userUpdateBody struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UserUpdate changes the name and/or password. Fields left out of the
// body are kept.
func (a *API) UserUpdate(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var data userUpdateBody
	if err := bind(c, &data); err != nil {
		fail(c, err)
		return
	}

	var name, hash string

	if data.Name != nil {
		if err := validators.NameValidator(*data.Name); err != nil {
			fail(c, apperr.Validation(err.Error()))
			return
		}

		name = *data.Name
	}

	if data.Password != nil {
		if err := validators.PasswordValidator(*data.Password); err != nil {
			fail(c, apperr.Validation(err.Error()))
			return
		}

		h, err := a.Hasher.GenerateFromPassword(*data.Password)
		if err != nil {
			fail(c, err)
			return
		}

		hash = h
	}

	if err := a.Users.Update(c.Request.Context(), userID, name, hash); err != nil {
		fail(c, err)
		return
	}

	u, err := a.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, u.Public())
}

// UserDelete removes the account. The session token goes with it.
func (a *API) UserDelete(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	if err := a.Users.Delete(c.Request.Context(), userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}
