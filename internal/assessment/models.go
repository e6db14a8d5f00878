package assessment

import "errors"

// PassThreshold is the minimum percentage score that counts as a pass.
const PassThreshold = 80

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("option not found")
	ErrNotAnswering     = errors.New("session is not accepting answers")
	ErrIncomplete       = errors.New("all questions must be answered before submitting")
	ErrSubmitInFlight   = errors.New("submission already in flight")
	ErrRetryNotOffered  = errors.New("retry is only offered after a failed attempt")
	ErrSessionUnmounted = errors.New("session has been discarded")
	ErrAlreadySubmitted = errors.New("results already shown")
)

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	Correct string   `json:"correct,omitempty"` // option id; stripped before serving
}

// QuestionSet is the fixed, ordered final assessment for a course.
// It is immutable for the lifetime of a session.
type QuestionSet struct {
	CourseID  string     `json:"course_id"`
	Questions []Question `json:"questions"`
}

func (qs QuestionSet) Len() int { return len(qs.Questions) }

func (qs QuestionSet) question(id string) (Question, bool) {
	for _, q := range qs.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Redacted returns a copy safe to serve to the client: correct option ids removed.
func (qs QuestionSet) Redacted() QuestionSet {
	out := QuestionSet{CourseID: qs.CourseID, Questions: make([]Question, len(qs.Questions))}
	copy(out.Questions, qs.Questions)
	for i := range out.Questions {
		out.Questions[i].Correct = ""
	}
	return out
}

// ScoreRecord is the persisted outcome of a completed attempt,
// keyed by (user, course). Writes are last-write-wins upserts.
type ScoreRecord struct {
	UserID   string
	CourseID string
	Score    int // 0..100
}

type State uint8

const (
	StateAnswering State = iota
	StateSubmitting
	StateResults
)

func (s State) String() string {
	switch s {
	case StateAnswering:
		return "answering"
	case StateSubmitting:
		return "submitting"
	case StateResults:
		return "results"
	}
	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *State) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"answering"`:
		*s = StateAnswering
	case `"submitting"`:
		*s = StateSubmitting
	case `"results"`:
		*s = StateResults
	default:
		return errors.New("unknown state: " + string(b))
	}
	return nil
}
