package api

import (
	"net/http"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/model"
	"bitwise74/course-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bindCourse(c *gin.Context) (*model.Course, error) {
	var course model.Course
	if err := bind(c, &course); err != nil {
		return nil, err
	}

	if err := validators.CourseValidator(&course); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	return &course, nil
}

func (a *API) CourseCreate(c *gin.Context) {
	course, err := bindCourse(c)
	if err != nil {
		fail(c, err)
		return
	}

	if err := a.Courses.Create(c.Request.Context(), course); err != nil {
		fail(c, err)
		return
	}

	a.invalidateCache(c)

	zap.L().Info("Course created", zap.String("courseID", course.ID), zap.String("userID", c.GetString("userID")))
	c.JSON(http.StatusCreated, course)
}

// CourseReplace overwrites a course. Lessons sent with their existing ID
// keep the progress users made on them, all others start fresh.
func (a *API) CourseReplace(c *gin.Context) {
	course, err := bindCourse(c)
	if err != nil {
		fail(c, err)
		return
	}

	if err := a.Courses.Replace(c.Request.Context(), c.Param("id"), course); err != nil {
		fail(c, notFoundAs(err, ErrCourseNotFound))
		return
	}

	a.invalidateCache(c)

	updated, err := a.Courses.Get(c.Request.Context(), course.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (a *API) CourseDelete(c *gin.Context) {
	id := c.Param("id")

	if err := a.Courses.Delete(c.Request.Context(), id); err != nil {
		fail(c, notFoundAs(err, ErrCourseNotFound))
		return
	}

	a.invalidateCache(c)

	zap.L().Info("Course deleted", zap.String("courseID", id), zap.String("userID", c.GetString("userID")))
	c.JSON(http.StatusOK, gin.H{
		"message": "Course deleted successfully",
	})
}
