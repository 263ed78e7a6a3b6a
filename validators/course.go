package validators

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"bitwise74/course-api/model"
)

var (
	ErrCourseTitle = errors.New("course title can't be empty")
	ErrCourseLevel = errors.New("course level must be Beginner, Intermediate or Advanced")
	ErrCoursePrice = errors.New("course price can't be negative")

	validLevels = []model.CourseLevel{model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced}
)

// CourseValidator checks a course before it is stored. Errors name the
// offending lesson or question by position.
func CourseValidator(c *model.Course) error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrCourseTitle
	}

	if !slices.Contains(validLevels, c.Level) {
		return ErrCourseLevel
	}

	if c.Price < 0 {
		return ErrCoursePrice
	}

	ids := make(map[string]bool, len(c.Lessons))

	for i, l := range c.Lessons {
		if strings.TrimSpace(l.Title) == "" {
			return fmt.Errorf("lesson %d has no title", i+1)
		}

		if l.Duration < 0 {
			return fmt.Errorf("lesson %d has a negative duration", i+1)
		}

		if l.MinPassingScore < 0 || l.MinPassingScore > 100 {
			return fmt.Errorf("lesson %d passing score must be between 0 and 100", i+1)
		}

		if l.ID != "" {
			if ids[l.ID] {
				return fmt.Errorf("lesson %d reuses lesson ID %v", i+1, l.ID)
			}

			ids[l.ID] = true
		}

		if err := questionsValidator(l.Questions); err != nil {
			return fmt.Errorf("lesson %d: %w", i+1, err)
		}
	}

	return nil
}

func questionsValidator(qs []model.Question) error {
	seen := make(map[int]bool, len(qs))

	for i, q := range qs {
		if seen[q.QuestionID] {
			return fmt.Errorf("question %d has a duplicate questionId %d", i+1, q.QuestionID)
		}
		seen[q.QuestionID] = true

		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d has no text", i+1)
		}

		if len(q.Options) < 2 {
			return fmt.Errorf("question %d needs at least 2 options", i+1)
		}

		if q.CorrectAnswer == nil || *q.CorrectAnswer < 0 || *q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %d has no valid correct answer", i+1)
		}
	}

	return nil
}
