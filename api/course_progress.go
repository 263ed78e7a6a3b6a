package api

import (
	"net/http"

	"bitwise74/course-api/service"

	"github.com/gin-gonic/gin"
)

func (a *API) CourseProgress(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	ctx := c.Request.Context()

	course, err := a.Courses.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, notFoundAs(err, ErrCourseNotFound))
		return
	}

	lessonIDs := make([]string, len(course.Lessons))
	for i, l := range course.Lessons {
		lessonIDs[i] = l.ID
	}

	video, err := a.Courses.VideoProgressForLessons(ctx, lessonIDs, userID)
	if err != nil {
		fail(c, err)
		return
	}

	attempts, err := a.Courses.AttemptsForLessons(ctx, lessonIDs, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, service.BuildCourseProgress(course, video, attempts))
}

// LessonComplete marks the lesson video of a course as fully watched
func (a *API) LessonComplete(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	ctx := c.Request.Context()

	lesson, err := a.Courses.Lesson(ctx, c.Param("lessonId"))
	if err != nil {
		fail(c, notFoundAs(err, ErrLessonNotFound))
		return
	}

	if lesson.CourseID != c.Param("id") {
		fail(c, ErrLessonNotFound)
		return
	}

	if err := a.Courses.CompleteLesson(ctx, lesson.ID, userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Lesson marked as complete",
	})
}
