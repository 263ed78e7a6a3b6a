package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CourseList returns every course with lessons and questions. Correct
// answers are stripped, the response is public and cached.
func (a *API) CourseList(c *gin.Context) {
	courses, err := a.Courses.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	for i := range courses {
		courses[i].RedactAnswers()
	}

	c.JSON(http.StatusOK, courses)
}

func (a *API) CourseFetch(c *gin.Context) {
	course, err := a.Courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, notFoundAs(err, ErrCourseNotFound))
		return
	}

	course.RedactAnswers()
	c.JSON(http.StatusOK, course)
}

// CourseMine returns the courses the user is enrolled in
func (a *API) CourseMine(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	courses, err := a.Courses.Enrolled(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	for i := range courses {
		courses[i].RedactAnswers()
	}

	c.JSON(http.StatusOK, courses)
}
