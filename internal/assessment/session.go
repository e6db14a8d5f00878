package assessment

import (
	"context"
	"sync"
)

// Session is the per-user, per-course assessment state machine. All state is
// local until submission, which performs exactly one best-effort score write.
//
// States: Answering -> Submitting -> Results. A session whose user already
// has a stored ScoreRecord initializes directly into Results with the stored
// score; no answers are retained in that case, so the per-question review is
// unavailable.
type Session struct {
	mu     sync.Mutex
	set    QuestionSet
	userID string
	scores ScoreStore // nil when no signed-in user

	state      State
	index      int
	answers    map[string]string // question id -> selected option id
	score      int
	warning    string
	reviewable bool
	mounted    bool
}

// NewSession creates a session for the given user and question set. A prior
// stored score short-circuits straight to Results; a failed score read is
// degraded to "no prior attempt".
func NewSession(ctx context.Context, set QuestionSet, userID string, scores ScoreStore) *Session {
	s := &Session{
		set:     set,
		userID:  userID,
		scores:  scores,
		state:   StateAnswering,
		answers: map[string]string{},
		mounted: true,
	}
	if scores != nil && userID != "" {
		if rec, ok, err := scores.Get(ctx, userID, set.CourseID); err == nil && ok {
			s.state = StateResults
			s.score = rec.Score
		}
	}
	return s
}

// SelectAnswer records or overwrites the selection for a question.
// Re-selecting the current option is a no-op. Never advances the index.
func (s *Session) SelectAnswer(questionID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return ErrSessionUnmounted
	}
	if s.state != StateAnswering {
		return ErrNotAnswering
	}
	q, ok := s.set.question(questionID)
	if !ok {
		return ErrQuestionNotFound
	}
	valid := false
	for _, o := range q.Options {
		if o.ID == optionID {
			valid = true
			break
		}
	}
	if !valid {
		return ErrOptionNotFound
	}
	if s.answers[questionID] == optionID {
		return nil // idempotent
	}
	s.answers[questionID] = optionID
	return nil
}

// Jump moves to an arbitrary question index. Out-of-range targets are
// clamped silently; all indices are navigable regardless of completion.
func (s *Session) Jump(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if max := s.set.Len() - 1; i > max {
		i = max
	}
	if i < 0 {
		i = 0
	}
	s.index = i
}

func (s *Session) Next()     { s.Jump(s.Index() + 1) }
func (s *Session) Previous() { s.Jump(s.Index() - 1) }

func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CanSubmit reports whether submission is currently enabled: every question
// answered, in Answering, no submit in flight.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

func (s *Session) canSubmitLocked() bool {
	return s.mounted && s.state == StateAnswering && len(s.answers) == s.set.Len() && s.set.Len() > 0
}

// Submit computes the score, persists it best-effort, and transitions to
// Results. A persistence failure is reported via the session warning and
// never blocks the transition. A second Submit while one is in flight is
// rejected, as is Submit with an incomplete answer map.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return ErrSessionUnmounted
	}
	switch s.state {
	case StateResults:
		s.mu.Unlock()
		return ErrAlreadySubmitted
	case StateSubmitting:
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	if len(s.answers) != s.set.Len() || s.set.Len() == 0 {
		s.mu.Unlock()
		return ErrIncomplete
	}
	s.state = StateSubmitting
	score := Score(s.set, s.answers)
	rec := ScoreRecord{UserID: s.userID, CourseID: s.set.CourseID, Score: score}
	store, userID := s.scores, s.userID
	s.mu.Unlock()

	// Write outside the lock: the session stays navigable while in flight.
	var warning string
	switch {
	case store == nil || userID == "":
		warning = "score not saved: no signed-in user"
	default:
		if err := store.Upsert(ctx, rec); err != nil {
			warning = "score could not be saved: " + err.Error()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		// Result arrived after the view went away; discard.
		return ErrSessionUnmounted
	}
	s.score = score
	s.warning = warning
	s.reviewable = true
	s.state = StateResults
	return nil
}

// Retry is only offered after a failed attempt. It clears the answer map,
// resets the index and returns to Answering.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return ErrSessionUnmounted
	}
	if s.state != StateResults || Passed(s.score) {
		return ErrRetryNotOffered
	}
	s.answers = map[string]string{}
	s.index = 0
	s.score = 0
	s.warning = ""
	s.reviewable = false
	s.state = StateAnswering
	return nil
}

// Unmount marks the session dead. Any in-flight submission result is
// discarded when it later arrives.
func (s *Session) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = false
}

// Questions returns the session's question set with answer keys stripped,
// safe to serve to the client.
func (s *Session) Questions() QuestionSet { return s.set.Redacted() }

// View is the snapshot served to the client.
type View struct {
	State        State             `json:"state"`
	Index        int               `json:"index"`
	Total        int               `json:"total"`
	Answers      map[string]string `json:"answers"`
	CanSubmit    bool              `json:"can_submit"`
	Score        int               `json:"score"`
	Passed       bool              `json:"passed"`
	RetryOffered bool              `json:"retry_offered"`
	Warning      string            `json:"warning,omitempty"`
	Review       []QuestionReview  `json:"review,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		State:     s.state,
		Index:     s.index,
		Total:     s.set.Len(),
		Answers:   make(map[string]string, len(s.answers)),
		CanSubmit: s.canSubmitLocked(),
	}
	for k, val := range s.answers {
		v.Answers[k] = val
	}
	if s.state == StateResults {
		v.Score = s.score
		v.Passed = Passed(s.score)
		v.RetryOffered = !v.Passed
		v.Warning = s.warning
		if s.reviewable {
			v.Review = Review(s.set, s.answers)
		}
	}
	return v
}
