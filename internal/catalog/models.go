package catalog

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrLessonLocked   = errors.New("lesson is locked")
	ErrBadTransition  = errors.New("lesson status transition not allowed")
)

type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	DurationMin int    `json:"duration_min"`
}

type Lesson struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Content     string `json:"content,omitempty"`
	DurationMin int    `json:"duration_min"`
	OrderIndex  int    `json:"order_index"`
}

// LessonView is a lesson merged with the user's derived status.
type LessonView struct {
	Lesson
	Status LessonStatus `json:"status"`
}

// Enrollment tracks one user's standing in a course. QuizScore is nil until
// the final assessment has been submitted at least once.
type Enrollment struct {
	UserID    string `json:"user_id"`
	CourseID  string `json:"course_id"`
	Progress  int    `json:"progress"` // percent of lessons completed
	Status    string `json:"status"`   // in-progress | completed
	QuizScore *int   `json:"quiz_score,omitempty"`
}

// CourseView is a course merged with the user's enrollment, if any.
type CourseView struct {
	Course
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
	QuizScore *int `json:"quiz_score,omitempty"`
}
