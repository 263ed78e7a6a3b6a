package api

import (
	"net/http"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/model"

	"github.com/gin-gonic/gin"
)

type videoProgressBody struct {
	WatchedDuration float64 `json:"watchedDuration"`
	LastPosition    float64 `json:"lastPosition"`
	Completed       bool    `json:"completed"`
}

func (a *API) VideoProgressFetch(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	ctx := c.Request.Context()

	lesson, err := a.Courses.Lesson(ctx, c.Param("lessonId"))
	if err != nil {
		fail(c, notFoundAs(err, ErrLessonNotFound))
		return
	}

	p, err := a.Courses.VideoProgress(ctx, lesson.ID, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (a *API) VideoProgressSave(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	ctx := c.Request.Context()

	var data videoProgressBody
	if err := bind(c, &data); err != nil {
		fail(c, err)
		return
	}

	if data.WatchedDuration < 0 || data.LastPosition < 0 {
		fail(c, apperr.Validation("Progress values can't be negative"))
		return
	}

	lesson, err := a.Courses.Lesson(ctx, c.Param("lessonId"))
	if err != nil {
		fail(c, notFoundAs(err, ErrLessonNotFound))
		return
	}

	p := &model.VideoProgress{
		LessonID:        lesson.ID,
		UserID:          userID,
		WatchedDuration: data.WatchedDuration,
		LastPosition:    data.LastPosition,
		Completed:       data.Completed,
	}

	if err := a.Courses.SaveVideoProgress(ctx, p); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Progress updated successfully",
		"progress": p,
	})
}
