package service

import (
	"math"

	"bitwise74/course-api/model"
)

type QuizResult struct {
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

// ScoreQuiz grades answers against the lesson's questions. The score is
// the percentage of questions answered correctly, rounded. Answers for
// unknown questions are ignored and a lesson without questions scores 0.
func ScoreQuiz(l *model.Lesson, answers model.AnswerList) QuizResult {
	if len(l.Questions) == 0 {
		return QuizResult{Score: 0, Passed: 0 >= minScore(l)}
	}

	selected := make(map[int]int, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedAnswer
	}

	var correct int
	for _, q := range l.Questions {
		s, ok := selected[q.QuestionID]
		if ok && q.CorrectAnswer != nil && *q.CorrectAnswer == s {
			correct++
		}
	}

	score := int(math.Round(float64(correct) / float64(len(l.Questions)) * 100))

	return QuizResult{
		Score:  score,
		Passed: score >= minScore(l),
	}
}

func minScore(l *model.Lesson) int {
	if l.MinPassingScore <= 0 {
		return 70
	}

	return l.MinPassingScore
}
