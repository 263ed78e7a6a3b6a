package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) CourseEnroll(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	if err := a.Courses.Enroll(c.Request.Context(), userID, c.Param("id")); err != nil {
		fail(c, notFoundAs(err, ErrCourseNotFound))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully enrolled in course",
	})
}

func (a *API) CourseUnenroll(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	if err := a.Courses.Unenroll(c.Request.Context(), userID, c.Param("id")); err != nil {
		fail(c, notFoundAs(err, ErrCourseNotFound))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully unenrolled from course",
	})
}
