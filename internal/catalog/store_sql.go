package catalog

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"
)

// Store is the SQL-backed catalog: courses, lessons, per-user progress and
// enrollments. Missing progress rows degrade to "not started" rather than
// erroring; the derivation in status.go fills in lock state.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) GetCourse(ctx context.Context, id string) (Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, category, duration_min FROM courses WHERE id=$1`, id)
	var c Course
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.DurationMin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, err
	}
	return c, nil
}

// ListCourses returns every course merged with the user's enrollment.
func (s *Store) ListCourses(ctx context.Context, userID string) ([]CourseView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.title, c.description, c.category, c.duration_min,
		        e.progress, e.status, e.quiz_score
		   FROM courses c
		   LEFT JOIN enrollments e ON e.course_id=c.id AND e.user_id=$1
		  ORDER BY c.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CourseView{}
	for rows.Next() {
		var v CourseView
		var progress sql.NullInt64
		var status sql.NullString
		var score sql.NullInt64
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.Category, &v.DurationMin,
			&progress, &status, &score); err != nil {
			return nil, err
		}
		if progress.Valid {
			v.Progress = int(progress.Int64)
		}
		v.Completed = status.Valid && status.String == "completed"
		if score.Valid {
			n := int(score.Int64)
			v.QuizScore = &n
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListLessons returns a course's lessons in order.
func (s *Store) ListLessons(ctx context.Context, courseID string) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, title, content, duration_min, order_index
		   FROM lessons WHERE course_id=$1 ORDER BY order_index`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Lesson{}
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.DurationMin, &l.OrderIndex); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// recordedProgress loads the user's stored lesson statuses for a course.
// Rows with an unparsable status are skipped, not fatal.
func (s *Store) recordedProgress(ctx context.Context, userID, courseID string) (map[string]LessonStatus, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.lesson_id, p.status
		   FROM lesson_progress p
		   JOIN lessons l ON l.id=p.lesson_id
		  WHERE p.user_id=$1 AND l.course_id=$2`, userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]LessonStatus{}
	for rows.Next() {
		var lessonID, raw string
		if err := rows.Scan(&lessonID, &raw); err != nil {
			return nil, err
		}
		if st, err := ParseLessonStatus(raw); err == nil {
			out[lessonID] = st
		}
	}
	return out, rows.Err()
}

// LessonViews merges a course's lessons with the user's derived statuses.
func (s *Store) LessonViews(ctx context.Context, userID, courseID string) ([]LessonView, error) {
	lessons, err := s.ListLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	recorded, err := s.recordedProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	out := make([]LessonView, 0, len(lessons))
	for i, l := range lessons {
		out = append(out, LessonView{Lesson: l, Status: DeriveLessonStatus(i, lessons, recorded)})
	}
	return out, nil
}

func (s *Store) findLesson(lessons []Lesson, lessonID string) (int, bool) {
	for i, l := range lessons {
		if l.ID == lessonID {
			return i, true
		}
	}
	return 0, false
}

// StartLesson moves a lesson to in-progress. Starting an already started or
// completed lesson is a no-op; starting a locked lesson is rejected.
func (s *Store) StartLesson(ctx context.Context, userID, courseID, lessonID string) error {
	lessons, err := s.ListLessons(ctx, courseID)
	if err != nil {
		return err
	}
	idx, ok := s.findLesson(lessons, lessonID)
	if !ok {
		return ErrLessonNotFound
	}
	recorded, err := s.recordedProgress(ctx, userID, courseID)
	if err != nil {
		return err
	}
	switch st := DeriveLessonStatus(idx, lessons, recorded); st {
	case StatusLocked:
		return ErrLessonLocked
	case StatusInProgress, StatusCompleted:
		return nil
	case StatusNotStarted:
		if !CanTransition(st, StatusInProgress) {
			return ErrBadTransition
		}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lesson_progress (user_id, lesson_id, status) VALUES ($1, $2, 'in-progress')
		 ON CONFLICT (user_id, lesson_id) DO UPDATE SET status='in-progress'`,
		userID, lessonID)
	return err
}

// CompleteLesson marks a lesson completed and recomputes the enrollment's
// progress percent. Only an in-progress lesson may complete.
func (s *Store) CompleteLesson(ctx context.Context, userID, courseID, lessonID string) (Enrollment, error) {
	lessons, err := s.ListLessons(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	idx, ok := s.findLesson(lessons, lessonID)
	if !ok {
		return Enrollment{}, ErrLessonNotFound
	}
	recorded, err := s.recordedProgress(ctx, userID, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	st := DeriveLessonStatus(idx, lessons, recorded)
	if st == StatusLocked {
		return Enrollment{}, ErrLessonLocked
	}
	if !CanTransition(st, StatusCompleted) {
		return Enrollment{}, ErrBadTransition
	}

	now := time.Now().Unix()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO lesson_progress (user_id, lesson_id, status, completed_at)
		 VALUES ($1, $2, 'completed', $3)
		 ON CONFLICT (user_id, lesson_id) DO UPDATE SET status='completed', completed_at=EXCLUDED.completed_at`,
		userID, lessonID, now); err != nil {
		return Enrollment{}, err
	}

	recorded[lessonID] = StatusCompleted
	completed := 0
	for _, l := range lessons {
		if recorded[l.ID] == StatusCompleted {
			completed++
		}
	}
	percent := 0
	if len(lessons) > 0 {
		percent = int(math.Floor(float64(completed)/float64(len(lessons))*100 + 0.5))
	}
	status := "in-progress"
	if percent == 100 {
		status = "completed"
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollments (user_id, course_id, progress, status, enrolled_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, course_id) DO UPDATE SET progress=EXCLUDED.progress, status=EXCLUDED.status`,
		userID, courseID, percent, status, now); err != nil {
		return Enrollment{}, err
	}
	return Enrollment{UserID: userID, CourseID: courseID, Progress: percent, Status: status}, nil
}

// PassedEnrollment is one row of the certificates view: a course whose final
// assessment the user has passed.
type PassedEnrollment struct {
	CourseID    string `json:"course_id"`
	CourseTitle string `json:"course_title"`
	QuizScore   int    `json:"quiz_score"`
	EnrolledAt  int64  `json:"enrolled_at"`
}

// PassedEnrollments lists the user's enrollments with a passing quiz score.
func (s *Store) PassedEnrollments(ctx context.Context, userID string, threshold int) ([]PassedEnrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.course_id, c.title, e.quiz_score, e.enrolled_at
		   FROM enrollments e
		   JOIN courses c ON c.id=e.course_id
		  WHERE e.user_id=$1 AND e.quiz_score IS NOT NULL AND e.quiz_score>=$2
		  ORDER BY e.enrolled_at DESC`, userID, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PassedEnrollment{}
	for rows.Next() {
		var p PassedEnrollment
		if err := rows.Scan(&p.CourseID, &p.CourseTitle, &p.QuizScore, &p.EnrolledAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
