package store

import (
	"context"
	"errors"
	"time"

	"bitwise74/course-api/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Courses struct {
	db *gorm.DB
}

func NewCourses(db *gorm.DB) *Courses {
	return &Courses{db: db}
}

func (s *Courses) withContent(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Preload("Lessons.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_id asc")
		})
}

func (s *Courses) List(ctx context.Context) ([]model.Course, error) {
	courses := []model.Course{}

	err := s.withContent(ctx).
		Order("created_at desc").
		Find(&courses).
		Error

	return courses, err
}

func (s *Courses) Get(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course

	err := s.withContent(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &c, nil
}

// Create stores the course with its lessons and questions. IDs are
// assigned here, any sent by the client are ignored.
func (s *Courses) Create(ctx context.Context, c *model.Course) error {
	c.ID = uuid.NewString()
	for i := range c.Lessons {
		c.Lessons[i].ID = ""
	}
	prepareCourse(c)

	return s.db.WithContext(ctx).Create(c).Error
}

// Replace overwrites a course and its lesson list. Lessons that keep
// their ID keep the progress and attempts recorded against them.
func (s *Courses) Replace(ctx context.Context, id string, c *model.Course) error {
	c.ID = id
	prepareCourse(c)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Course
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return err
		}

		c.CreatedAt = existing.CreatedAt

		var oldLessons []string
		if err := tx.Model(&model.Lesson{}).Where("course_id = ?", id).Pluck("id", &oldLessons).Error; err != nil {
			return err
		}

		kept := make(map[string]bool, len(c.Lessons))
		for _, l := range c.Lessons {
			kept[l.ID] = true
		}

		var dropped []string
		for _, l := range oldLessons {
			if !kept[l] {
				dropped = append(dropped, l)
			}
		}

		if err := deleteLessonData(tx, dropped); err != nil {
			return err
		}

		if len(oldLessons) > 0 {
			if err := tx.Where("lesson_id IN ?", oldLessons).Delete(&model.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
				return err
			}
		}

		// Save doesn't touch associations, lessons are recreated below
		lessons := c.Lessons
		c.Lessons = nil
		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return err
		}

		c.Lessons = lessons
		if len(lessons) == 0 {
			return nil
		}

		return tx.Create(&c.Lessons).Error
	})
}

func (s *Courses) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lessons []string
		if err := tx.Model(&model.Lesson{}).Where("course_id = ?", id).Pluck("id", &lessons).Error; err != nil {
			return err
		}

		if err := deleteLessonData(tx, lessons); err != nil {
			return err
		}

		if len(lessons) > 0 {
			if err := tx.Where("lesson_id IN ?", lessons).Delete(&model.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("course_id = ?", id).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}

		r := tx.Where("id = ?", id).Delete(&model.Course{})
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

func deleteLessonData(tx *gorm.DB, lessonIDs []string) error {
	if len(lessonIDs) == 0 {
		return nil
	}

	if err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&model.VideoProgress{}).Error; err != nil {
		return err
	}

	return tx.Where("lesson_id IN ?", lessonIDs).Delete(&model.QuizAttempt{}).Error
}

func prepareCourse(c *model.Course) {
	if c.Image == "" {
		c.Image = model.DefaultCourseImage
	}

	c.Enrollments = nil

	for i := range c.Lessons {
		l := &c.Lessons[i]
		if l.ID == "" {
			l.ID = uuid.NewString()
		}

		l.CourseID = c.ID
		if l.MinPassingScore <= 0 {
			l.MinPassingScore = 70
		}

		for j := range l.Questions {
			l.Questions[j].ID = 0
			l.Questions[j].LessonID = l.ID
		}
	}
}

func (s *Courses) Enroll(ctx context.Context, userID, courseID string) error {
	if _, err := s.courseExists(ctx, courseID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Create(&model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyEnrolled
	}

	return err
}

func (s *Courses) Unenroll(ctx context.Context, userID, courseID string) error {
	if _, err := s.courseExists(ctx, courseID); err != nil {
		return err
	}

	r := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&model.Enrollment{})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrNotEnrolled
	}

	return nil
}

func (s *Courses) courseExists(ctx context.Context, id string) (bool, error) {
	var n int64

	err := s.db.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).Count(&n).Error
	if err != nil {
		return false, err
	}

	if n == 0 {
		return false, ErrNotFound
	}

	return true, nil
}

// Enrolled returns the courses the user is enrolled in
func (s *Courses) Enrolled(ctx context.Context, userID string) ([]model.Course, error) {
	courses := []model.Course{}

	err := s.withContent(ctx).
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ?", userID).
		Order("enrollments.enrolled_at desc").
		Find(&courses).
		Error

	return courses, err
}

func (s *Courses) Lesson(ctx context.Context, lessonID string) (*model.Lesson, error) {
	var l model.Lesson

	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_id asc")
		}).
		Where("id = ?", lessonID).
		First(&l).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &l, nil
}

// VideoProgress returns the user's progress on a lesson. A user that
// never started the video gets a zero record.
func (s *Courses) VideoProgress(ctx context.Context, lessonID, userID string) (*model.VideoProgress, error) {
	var p model.VideoProgress

	err := s.db.WithContext(ctx).
		Where("lesson_id = ? AND user_id = ?", lessonID, userID).
		First(&p).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.VideoProgress{LessonID: lessonID, UserID: userID}, nil
		}

		return nil, err
	}

	return &p, nil
}

// SaveVideoProgress upserts on (lesson, user)
func (s *Courses) SaveVideoProgress(ctx context.Context, p *model.VideoProgress) error {
	p.ID = 0
	p.UpdatedAt = time.Now()

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"watched_duration", "last_position", "completed", "updated_at"}),
		}).
		Create(p).
		Error
}

// CompleteLesson marks the lesson video as fully watched without
// touching the recorded position.
func (s *Courses) CompleteLesson(ctx context.Context, lessonID, userID string) error {
	p, err := s.VideoProgress(ctx, lessonID, userID)
	if err != nil {
		return err
	}

	p.Completed = true

	return s.SaveVideoProgress(ctx, p)
}

func (s *Courses) VideoProgressForLessons(ctx context.Context, lessonIDs []string, userID string) ([]model.VideoProgress, error) {
	out := []model.VideoProgress{}
	if len(lessonIDs) == 0 {
		return out, nil
	}

	err := s.db.WithContext(ctx).
		Where("lesson_id IN ? AND user_id = ?", lessonIDs, userID).
		Find(&out).
		Error

	return out, err
}

func (s *Courses) Attempts(ctx context.Context, lessonID, userID string) ([]model.QuizAttempt, error) {
	return s.AttemptsForLessons(ctx, []string{lessonID}, userID)
}

func (s *Courses) AttemptsForLessons(ctx context.Context, lessonIDs []string, userID string) ([]model.QuizAttempt, error) {
	out := []model.QuizAttempt{}
	if len(lessonIDs) == 0 {
		return out, nil
	}

	err := s.db.WithContext(ctx).
		Where("lesson_id IN ? AND user_id = ?", lessonIDs, userID).
		Order("attempt_date asc, id asc").
		Find(&out).
		Error

	return out, err
}

func (s *Courses) draft(tx *gorm.DB, lessonID, userID string) (*model.QuizAttempt, error) {
	var a model.QuizAttempt

	err := tx.Where("lesson_id = ? AND user_id = ? AND completed = ?", lessonID, userID, false).
		Order("id desc").
		First(&a).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &a, nil
}

// SaveDraft merges answers into the user's unfinished attempt,
// creating one when needed.
func (s *Courses) SaveDraft(ctx context.Context, lessonID, userID string, answers model.AnswerList) (*model.QuizAttempt, error) {
	var out *model.QuizAttempt

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := s.draft(tx, lessonID, userID)
		if err != nil {
			return err
		}

		if d == nil {
			d = &model.QuizAttempt{
				LessonID: lessonID,
				UserID:   userID,
			}
		}

		d.Answers = d.Answers.Merge(answers)
		d.AttemptDate = time.Now()
		out = d

		return tx.Save(d).Error
	})

	return out, err
}

// RecordAttempt stores a finished attempt. The user's draft, if any, is
// the attempt that gets finished.
func (s *Courses) RecordAttempt(ctx context.Context, a *model.QuizAttempt) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := s.draft(tx, a.LessonID, a.UserID)
		if err != nil {
			return err
		}

		if d != nil {
			a.ID = d.ID
		}

		a.Completed = true
		a.AttemptDate = time.Now()

		return tx.Save(a).Error
	})
}
