package assessment

import (
	"context"
	"sync"
)

// Service hands out at most one live Session per (user, course) and owns
// their lifecycle: created when the assessment view mounts, discarded when
// the user navigates away.
type Service struct {
	source QuestionSource
	scores ScoreStore

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewService(source QuestionSource, scores ScoreStore) *Service {
	return &Service{
		source:   source,
		scores:   scores,
		sessions: make(map[string]*Session),
	}
}

func sessionKey(userID, courseID string) string { return userID + "/" + courseID }

// Session returns the live session for (user, course), creating one if
// needed. Creation consults the score store so a prior attempt lands the
// session directly in Results.
func (s *Service) Session(ctx context.Context, userID, courseID string) (*Session, error) {
	key := sessionKey(userID, courseID)

	s.mu.Lock()
	if sess, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	set, err := s.source.LoadQuestionSet(ctx, courseID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key]; ok {
		return sess, nil
	}
	sess := NewSession(ctx, set, userID, s.scores)
	s.sessions[key] = sess
	return sess, nil
}

// Discard unmounts and drops the session, if any. Safe to call when none
// exists (e.g. duplicate leave events).
func (s *Service) Discard(userID, courseID string) {
	key := sessionKey(userID, courseID)
	s.mu.Lock()
	sess, ok := s.sessions[key]
	if ok {
		delete(s.sessions, key)
	}
	s.mu.Unlock()
	if ok {
		sess.Unmount()
	}
}
