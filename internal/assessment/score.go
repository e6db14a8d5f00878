package assessment

import "math"

// Score computes the rounded percentage for a fully-answered set.
// Rounding is round-half-up on the percentage value.
func Score(set QuestionSet, answers map[string]string) int {
	total := set.Len()
	if total == 0 {
		return 0
	}
	correct := 0
	for _, q := range set.Questions {
		if answers[q.ID] == q.Correct {
			correct++
		}
	}
	return int(math.Floor(float64(correct)/float64(total)*100 + 0.5))
}

// Passed reports whether a score meets the pass threshold.
func Passed(score int) bool { return score >= PassThreshold }

// QuestionReview is the per-question breakdown shown on the results screen.
type QuestionReview struct {
	QuestionID string `json:"question_id"`
	Correct    bool   `json:"correct"`
}

// Review walks the question set in order against an answer map. It is only
// meaningful when answers were retained; a session restored from a stored
// score has none.
func Review(set QuestionSet, answers map[string]string) []QuestionReview {
	out := make([]QuestionReview, 0, set.Len())
	for _, q := range set.Questions {
		out = append(out, QuestionReview{
			QuestionID: q.ID,
			Correct:    answers[q.ID] == q.Correct,
		})
	}
	return out
}
