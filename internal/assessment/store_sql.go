package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLScoreStore keeps scores on the enrollments row, keyed by (user, course).
// The write is a last-write-wins upsert; the store's own conflict handling is
// the only concurrency control required.
type SQLScoreStore struct {
	db *sql.DB
}

func NewSQLScoreStore(db *sql.DB) *SQLScoreStore { return &SQLScoreStore{db: db} }

func (s *SQLScoreStore) Get(ctx context.Context, userID, courseID string) (ScoreRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT quiz_score FROM enrollments WHERE user_id=$1 AND course_id=$2`, userID, courseID)
	var score sql.NullInt64
	if err := row.Scan(&score); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ScoreRecord{}, false, nil
		}
		return ScoreRecord{}, false, err
	}
	if !score.Valid {
		return ScoreRecord{}, false, nil
	}
	return ScoreRecord{UserID: userID, CourseID: courseID, Score: int(score.Int64)}, true, nil
}

func (s *SQLScoreStore) Upsert(ctx context.Context, rec ScoreRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollments (user_id, course_id, quiz_score, enrolled_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, course_id) DO UPDATE SET quiz_score=EXCLUDED.quiz_score`,
		rec.UserID, rec.CourseID, rec.Score, time.Now().Unix())
	return err
}

// SQLQuestionSource loads a course's question set from the quizzes table.
type SQLQuestionSource struct {
	db *sql.DB
}

func NewSQLQuestionSource(db *sql.DB) *SQLQuestionSource { return &SQLQuestionSource{db: db} }

func (s *SQLQuestionSource) LoadQuestionSet(ctx context.Context, courseID string) (QuestionSet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT questions_json FROM quizzes WHERE course_id=$1`, courseID)
	var qjson string
	if err := row.Scan(&qjson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuestionSet{}, ErrQuizNotFound
		}
		return QuestionSet{}, err
	}
	set := QuestionSet{CourseID: courseID}
	if err := json.Unmarshal([]byte(qjson), &set.Questions); err != nil {
		return QuestionSet{}, err
	}
	return set, nil
}

// PutQuestionSet stores (or replaces) a course's quiz. Used by seeding.
func (s *SQLQuestionSource) PutQuestionSet(ctx context.Context, set QuestionSet) error {
	qj, err := json.Marshal(set.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (course_id, questions_json, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (course_id) DO UPDATE SET questions_json=EXCLUDED.questions_json`,
		set.CourseID, string(qj), time.Now().Unix())
	return err
}
