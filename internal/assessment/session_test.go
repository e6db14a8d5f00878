package assessment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vision-360/safety-lms/internal/assessment"
)

func fiveQuestionSet() assessment.QuestionSet {
	qs := assessment.QuestionSet{CourseID: "truck-loading"}
	for _, id := range []string{"q1", "q2", "q3", "q4", "q5"} {
		qs.Questions = append(qs.Questions, assessment.Question{
			ID:     id,
			Prompt: "prompt " + id,
			Options: []assessment.Option{
				{ID: "a", Text: "wrong"},
				{ID: "b", Text: "right"},
				{ID: "c", Text: "also wrong"},
			},
			Correct: "b",
		})
	}
	return qs
}

func answerAll(t *testing.T, s *assessment.Session, correct int) {
	t.Helper()
	qs := fiveQuestionSet()
	for i, q := range qs.Questions {
		opt := "b"
		if i >= correct {
			opt = "a"
		}
		if err := s.SelectAnswer(q.ID, opt); err != nil {
			t.Fatalf("select %s: %v", q.ID, err)
		}
	}
}

func TestFourOfFiveIsPass(t *testing.T) {
	ctx := context.Background()
	store := assessment.NewMemoryScoreStore()
	s := assessment.NewSession(ctx, fiveQuestionSet(), "u1", store)

	answerAll(t, s, 4)
	if !s.CanSubmit() {
		t.Fatal("submission should be enabled with all questions answered")
	}
	if err := s.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	v := s.View()
	if v.Score != 80 || !v.Passed {
		t.Fatalf("want 80/pass, got %d passed=%v", v.Score, v.Passed)
	}
	if v.RetryOffered {
		t.Fatal("retry must not be offered after a pass")
	}
	if err := s.Retry(); !errors.Is(err, assessment.ErrRetryNotOffered) {
		t.Fatalf("want ErrRetryNotOffered, got %v", err)
	}
	if rec, ok, _ := store.Get(ctx, "u1", "truck-loading"); !ok || rec.Score != 80 {
		t.Fatalf("score not persisted: %+v ok=%v", rec, ok)
	}
}

func TestThreeOfFiveFailsAndRetryResets(t *testing.T) {
	ctx := context.Background()
	s := assessment.NewSession(ctx, fiveQuestionSet(), "u1", assessment.NewMemoryScoreStore())

	s.Jump(3)
	answerAll(t, s, 3)
	if err := s.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	v := s.View()
	if v.Score != 60 || v.Passed {
		t.Fatalf("want 60/fail, got %d passed=%v", v.Score, v.Passed)
	}
	if !v.RetryOffered {
		t.Fatal("retry must be offered after a fail")
	}

	if err := s.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	v = s.View()
	if v.State != assessment.StateAnswering {
		t.Fatalf("want Answering after retry, got %v", v.State)
	}
	if len(v.Answers) != 0 || v.Index != 0 {
		t.Fatalf("retry must clear answers and reset index, got %d answers index=%d", len(v.Answers), v.Index)
	}
}

func TestIncompleteSubmissionRejected(t *testing.T) {
	ctx := context.Background()
	store := assessment.NewMemoryScoreStore()
	s := assessment.NewSession(ctx, fiveQuestionSet(), "u1", store)

	for _, id := range []string{"q1", "q2", "q3"} {
		if err := s.SelectAnswer(id, "b"); err != nil {
			t.Fatalf("select: %v", err)
		}
	}
	if s.CanSubmit() {
		t.Fatal("submission must be disabled with 3 of 5 answered")
	}
	if err := s.Submit(ctx); !errors.Is(err, assessment.ErrIncomplete) {
		t.Fatalf("want ErrIncomplete, got %v", err)
	}
	if _, ok, _ := store.Get(ctx, "u1", "truck-loading"); ok {
		t.Fatal("no write may occur for a rejected submission")
	}
}

func TestPriorScoreShortCircuitsToResults(t *testing.T) {
	ctx := context.Background()
	store := assessment.NewMemoryScoreStore()
	if err := store.Upsert(ctx, assessment.ScoreRecord{UserID: "u1", CourseID: "truck-loading", Score: 92}); err != nil {
		t.Fatal(err)
	}

	s := assessment.NewSession(ctx, fiveQuestionSet(), "u1", store)
	v := s.View()
	if v.State != assessment.StateResults {
		t.Fatalf("want Results on load, got %v", v.State)
	}
	if v.Score != 92 || !v.Passed {
		t.Fatalf("want stored 92/pass, got %d passed=%v", v.Score, v.Passed)
	}
	// No answers were retained from the prior session.
	if len(v.Review) != 0 {
		t.Fatalf("review must be unavailable for a restored score, got %d entries", len(v.Review))
	}
}

func TestReselectingSameOptionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := assessment.NewSession(ctx, fiveQuestionSet(), "u1", nil)

	if err := s.SelectAnswer("q1", "a"); err != nil {
		t.Fatal(err)
	}
	before := s.View().Answers
	if err := s.SelectAnswer("q1", "a"); err != nil {
		t.Fatal(err)
	}
	after := s.View().Answers
	if len(before) != len(after) || before["q1"] != after["q1"] {
		t.Fatalf("re-selection changed state: %v -> %v", before, after)
	}

	// Overwrite is allowed, never removal.
	if err := s.SelectAnswer("q1", "b"); err != nil {
		t.Fatal(err)
	}
	if got := s.View().Answers["q1"]; got != "b" {
		t.Fatalf("want overwrite to b, got %s", got)
	}
}

func TestJumpClampsSilently(t *testing.T) {
	s := assessment.NewSession(context.Background(), fiveQuestionSet(), "u1", nil)

	s.Jump(99)
	if got := s.Index(); got != 4 {
		t.Fatalf("want clamp to 4, got %d", got)
	}
	s.Jump(-7)
	if got := s.Index(); got != 0 {
		t.Fatalf("want clamp to 0, got %d", got)
	}
	s.Previous()
	if got := s.Index(); got != 0 {
		t.Fatalf("previous at 0 must stay at 0, got %d", got)
	}
	s.Next()
	if got := s.Index(); got != 1 {
		t.Fatalf("want 1 after next, got %d", got)
	}
}

func TestUnknownQuestionAndOptionRejected(t *testing.T) {
	s := assessment.NewSession(context.Background(), fiveQuestionSet(), "u1", nil)
	if err := s.SelectAnswer("nope", "a"); !errors.Is(err, assessment.ErrQuestionNotFound) {
		t.Fatalf("want ErrQuestionNotFound, got %v", err)
	}
	if err := s.SelectAnswer("q1", "z"); !errors.Is(err, assessment.ErrOptionNotFound) {
		t.Fatalf("want ErrOptionNotFound, got %v", err)
	}
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	store := assessment.NewMemoryScoreStore()
	store.FailUpserts = errors.New("store unavailable")
	s := assessment.NewSession(ctx, fiveQuestionSet(), "u1", store)

	answerAll(t, s, 5)
	if err := s.Submit(ctx); err != nil {
		t.Fatalf("submit must not fail on a persistence error: %v", err)
	}
	v := s.View()
	if v.State != assessment.StateResults || v.Score != 100 {
		t.Fatalf("local result must still be shown, got %v score=%d", v.State, v.Score)
	}
	if v.Warning == "" {
		t.Fatal("persistence failure must surface as a warning")
	}
}

func TestNilUserScoresLocallyWithWarning(t *testing.T) {
	ctx := context.Background()
	s := assessment.NewSession(ctx, fiveQuestionSet(), "", nil)

	answerAll(t, s, 5)
	if err := s.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	v := s.View()
	if v.Score != 100 {
		t.Fatalf("want local score 100, got %d", v.Score)
	}
	if v.Warning == "" {
		t.Fatal("missing user must surface as a warning")
	}
}

func TestSecondSubmitRejectedAfterResults(t *testing.T) {
	ctx := context.Background()
	s := assessment.NewSession(ctx, fiveQuestionSet(), "u1", assessment.NewMemoryScoreStore())
	answerAll(t, s, 5)
	if err := s.Submit(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(ctx); !errors.Is(err, assessment.ErrAlreadySubmitted) {
		t.Fatalf("want ErrAlreadySubmitted, got %v", err)
	}
}

func TestReviewMatchesAnswers(t *testing.T) {
	ctx := context.Background()
	s := assessment.NewSession(ctx, fiveQuestionSet(), "u1", assessment.NewMemoryScoreStore())
	answerAll(t, s, 4)
	if err := s.Submit(ctx); err != nil {
		t.Fatal(err)
	}
	v := s.View()
	if len(v.Review) != 5 {
		t.Fatalf("want 5 review rows, got %d", len(v.Review))
	}
	correct := 0
	for _, r := range v.Review {
		if r.Correct {
			correct++
		}
	}
	if correct != 4 {
		t.Fatalf("want 4 correct in review, got %d", correct)
	}
}

func TestScoreRounding(t *testing.T) {
	cases := []struct {
		total, correct, want int
	}{
		{5, 5, 100},
		{5, 4, 80},
		{5, 3, 60},
		{5, 0, 0},
		{3, 1, 33},
		{3, 2, 67},
		{6, 1, 17},  // 16.67 rounds up
		{8, 1, 13},  // 12.5 rounds half up
		{7, 6, 86},  // 85.71
		{40, 1, 3},  // 2.5 rounds half up
	}
	for _, c := range cases {
		set := assessment.QuestionSet{CourseID: "c"}
		answers := map[string]string{}
		for i := 0; i < c.total; i++ {
			id := string(rune('a' + i))
			set.Questions = append(set.Questions, assessment.Question{
				ID:      id,
				Options: []assessment.Option{{ID: "x"}, {ID: "y"}},
				Correct: "x",
			})
			if i < c.correct {
				answers[id] = "x"
			} else {
				answers[id] = "y"
			}
		}
		if got := assessment.Score(set, answers); got != c.want {
			t.Errorf("score(%d/%d) = %d, want %d", c.correct, c.total, got, c.want)
		}
		if got := assessment.Score(set, answers); got < 0 || got > 100 {
			t.Errorf("score out of range: %d", got)
		}
	}
}

func TestServiceReusesAndDiscardsSessions(t *testing.T) {
	ctx := context.Background()
	source := assessment.NewStaticSource(map[string]assessment.QuestionSet{
		"truck-loading": fiveQuestionSet(),
	})
	svc := assessment.NewService(source, assessment.NewMemoryScoreStore())

	s1, err := svc.Session(ctx, "u1", "truck-loading")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := svc.Session(ctx, "u1", "truck-loading")
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Fatal("same user+course must share one session")
	}

	svc.Discard("u1", "truck-loading")
	if err := s1.SelectAnswer("q1", "a"); !errors.Is(err, assessment.ErrSessionUnmounted) {
		t.Fatalf("discarded session must reject events, got %v", err)
	}

	s3, err := svc.Session(ctx, "u1", "truck-loading")
	if err != nil {
		t.Fatal(err)
	}
	if s3 == s1 {
		t.Fatal("discard must produce a fresh session on re-entry")
	}

	if _, err := svc.Session(ctx, "u1", "missing"); !errors.Is(err, assessment.ErrQuizNotFound) {
		t.Fatalf("want ErrQuizNotFound, got %v", err)
	}
}
