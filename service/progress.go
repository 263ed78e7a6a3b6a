package service

import "bitwise74/course-api/model"

type LessonAttempts struct {
	LessonID string              `json:"lessonId"`
	Attempts []model.QuizAttempt `json:"attempts"`
}

type CourseProgress struct {
	CompletedLessons []string         `json:"completedLessons"`
	QuizResults      []LessonAttempts `json:"quizResults"`
}

// BuildCourseProgress works out which lessons of c the user finished.
// A lesson with a quiz is finished once any attempt passed, one without
// a quiz once its video was watched to the end.
func BuildCourseProgress(c *model.Course, video []model.VideoProgress, attempts []model.QuizAttempt) CourseProgress {
	watched := make(map[string]bool, len(video))
	for _, v := range video {
		if v.Completed {
			watched[v.LessonID] = true
		}
	}

	byLesson := make(map[string][]model.QuizAttempt)
	for _, a := range attempts {
		if !a.Completed {
			continue
		}

		byLesson[a.LessonID] = append(byLesson[a.LessonID], a)
	}

	p := CourseProgress{
		CompletedLessons: []string{},
		QuizResults:      []LessonAttempts{},
	}

	for _, l := range c.Lessons {
		done := false

		if l.HasQuiz() {
			for _, a := range byLesson[l.ID] {
				if a.Passed {
					done = true
					break
				}
			}

			if la := byLesson[l.ID]; len(la) > 0 {
				p.QuizResults = append(p.QuizResults, LessonAttempts{LessonID: l.ID, Attempts: la})
			}
		} else {
			done = watched[l.ID]
		}

		if done {
			p.CompletedLessons = append(p.CompletedLessons, l.ID)
		}
	}

	return p
}
