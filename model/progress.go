package model

import "time"

type Enrollment struct {
	UserID     string    `gorm:"primaryKey" json:"userId"`
	CourseID   string    `gorm:"primaryKey" json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

type VideoProgress struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	LessonID        string    `gorm:"uniqueIndex:idx_progress_owner;not null" json:"lessonId"`
	UserID          string    `gorm:"uniqueIndex:idx_progress_owner;not null" json:"-"`
	WatchedDuration float64   `json:"watchedDuration"`
	LastPosition    float64   `json:"lastPosition"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type QuizAttempt struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	LessonID    string     `gorm:"index:idx_attempt_owner;not null" json:"lessonId"`
	UserID      string     `gorm:"index:idx_attempt_owner;not null" json:"-"`
	Answers     AnswerList `json:"answers"`
	Score       int        `json:"score"`
	Passed      bool       `json:"passed"`
	Completed   bool       `json:"completed"`
	AttemptDate time.Time  `json:"attemptDate"`
}
