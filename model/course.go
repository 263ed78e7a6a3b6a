package model

import "time"

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "Beginner"
	LevelIntermediate CourseLevel = "Intermediate"
	LevelAdvanced     CourseLevel = "Advanced"
)

const DefaultCourseImage = "default-course-image.jpg"

type Course struct {
	ID          string      `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"not null" json:"description"`
	Instructor  string      `gorm:"not null" json:"instructor"`
	Price       float64     `gorm:"not null" json:"price"`
	Duration    string      `gorm:"not null" json:"duration"` // Human readable, e.g. "6 weeks"
	Level       CourseLevel `gorm:"not null" json:"level"`
	Image       string      `json:"image"`
	Lessons     []Lesson    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	Enrollments []Enrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

type Lesson struct {
	ID          string `gorm:"primaryKey" json:"id"`
	CourseID    string `gorm:"index;not null" json:"courseId"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	Duration    int    `json:"duration"` // Seconds
	Content     string `json:"content"`
	Order       int    `gorm:"column:position;not null" json:"order"`

	QuizTitle       string     `json:"quizTitle"`
	MinPassingScore int        `gorm:"default:70" json:"minPassingScore"`
	Questions       []Question `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"questions"`
}

// HasQuiz reports whether the lesson carries any questions to answer.
func (l *Lesson) HasQuiz() bool {
	return len(l.Questions) > 0
}

type Question struct {
	ID         uint        `gorm:"primaryKey;autoIncrement" json:"-"`
	LessonID   string      `gorm:"index;not null" json:"-"`
	QuestionID int         `gorm:"not null" json:"questionId"`
	Question   string      `gorm:"not null" json:"question"`
	Options    StringSlice `json:"options"`
	// Index into Options. Nil on every read that leaves the server
	// through a public endpoint.
	CorrectAnswer *int `json:"correctAnswer,omitempty"`
}

// RedactAnswers strips the correct answers from all quiz questions
func (c *Course) RedactAnswers() {
	for i := range c.Lessons {
		for j := range c.Lessons[i].Questions {
			c.Lessons[i].Questions[j].CorrectAnswer = nil
		}
	}
}
