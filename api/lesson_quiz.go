package api

import (
	"net/http"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/model"
	"bitwise74/course-api/service"

	"github.com/gin-gonic/gin"
)

type answersBody struct {
	Answers model.AnswerList `json:"answers"`
}

// quizLesson loads the lesson behind :lessonId and fails unless it
// carries a quiz
func (a *API) quizLesson(c *gin.Context) (*model.Lesson, error) {
	lesson, err := a.Courses.Lesson(c.Request.Context(), c.Param("lessonId"))
	if err != nil {
		return nil, notFoundAs(err, ErrLessonNotFound)
	}

	if !lesson.HasQuiz() {
		return nil, ErrQuizNotFound
	}

	return lesson, nil
}

func (a *API) QuizProgressFetch(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	lesson, err := a.quizLesson(c)
	if err != nil {
		fail(c, err)
		return
	}

	attempts, err := a.Courses.Attempts(c.Request.Context(), lesson.ID, userID)
	if err != nil {
		fail(c, err)
		return
	}

	passed := false
	for _, at := range attempts {
		if at.Completed && at.Passed {
			passed = true
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"attempts": attempts,
		"passed":   passed,
	})
}

// QuizProgressSave stores partial answers. Later saves overwrite earlier
// answers to the same question.
func (a *API) QuizProgressSave(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var data answersBody
	if err := bind(c, &data); err != nil {
		fail(c, err)
		return
	}

	lesson, err := a.quizLesson(c)
	if err != nil {
		fail(c, err)
		return
	}

	draft, err := a.Courses.SaveDraft(c.Request.Context(), lesson.ID, userID, data.Answers)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quiz progress saved",
		"attempt": draft,
	})
}

func (a *API) QuizSubmit(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var data answersBody
	if err := bind(c, &data); err != nil {
		fail(c, err)
		return
	}

	if data.Answers == nil {
		fail(c, apperr.Validation("No answers provided"))
		return
	}

	lesson, err := a.quizLesson(c)
	if err != nil {
		fail(c, err)
		return
	}

	res := service.ScoreQuiz(lesson, data.Answers)

	err = a.Courses.RecordAttempt(c.Request.Context(), &model.QuizAttempt{
		LessonID: lesson.ID,
		UserID:   userID,
		Answers:  data.Answers,
		Score:    res.Score,
		Passed:   res.Passed,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
