package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vision-360/safety-lms/internal/activity"
	"github.com/vision-360/safety-lms/internal/assessment"
	auth "github.com/vision-360/safety-lms/internal/auth/middleware"
)

// GetQuizHandler returns the question set (answer keys stripped) and the
// caller's current session view. A user with a stored score lands directly
// in results.
func GetQuizHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		sess, err := svc.Session(r.Context(), sub, courseID)
		if err != nil {
			if errors.Is(err, assessment.ErrQuizNotFound) {
				respondError(w, http.StatusNotFound, "no quiz for this course")
			} else {
				respondError(w, http.StatusInternalServerError, "could not load quiz")
			}
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"questions": sess.Questions().Questions,
			"session":   sess.View(),
		})
	}
}

// AnswerHandler records one option selection.
func AnswerHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		var req struct {
			QuestionID string `json:"question_id"`
			OptionID   string `json:"option_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionID == "" || req.OptionID == "" {
			respondError(w, http.StatusBadRequest, "question_id and option_id required")
			return
		}

		sess, err := svc.Session(r.Context(), sub, courseID)
		if err != nil {
			respondError(w, http.StatusNotFound, "no quiz for this course")
			return
		}
		if err := sess.SelectAnswer(req.QuestionID, req.OptionID); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, sess.View())
	}
}

// NavigateHandler jumps to a question index; out-of-range targets clamp.
func NavigateHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		var req struct {
			Index *int `json:"index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
			respondError(w, http.StatusBadRequest, "index required")
			return
		}
		sess, err := svc.Session(r.Context(), sub, courseID)
		if err != nil {
			respondError(w, http.StatusNotFound, "no quiz for this course")
			return
		}
		sess.Jump(*req.Index)
		respondJSON(w, http.StatusOK, sess.View())
	}
}

// SubmitQuizHandler runs the one score computation and best-effort write.
func SubmitQuizHandler(svc *assessment.Service, log *activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		sess, err := svc.Session(r.Context(), sub, courseID)
		if err != nil {
			respondError(w, http.StatusNotFound, "no quiz for this course")
			return
		}
		switch err := sess.Submit(r.Context()); {
		case err == nil:
			v := sess.View()
			log.Record(r.Context(), sub, "quiz_submitted",
				courseID+" score="+strconv.Itoa(v.Score))
			respondJSON(w, http.StatusOK, v)
		case errors.Is(err, assessment.ErrIncomplete):
			respondError(w, http.StatusConflict, "all questions must be answered")
		case errors.Is(err, assessment.ErrSubmitInFlight):
			respondError(w, http.StatusConflict, "submission already in flight")
		case errors.Is(err, assessment.ErrAlreadySubmitted):
			respondError(w, http.StatusConflict, "results already shown")
		default:
			respondError(w, http.StatusInternalServerError, "could not submit")
		}
	}
}

// RetryQuizHandler resets a failed attempt back to the first question.
func RetryQuizHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		sess, err := svc.Session(r.Context(), sub, courseID)
		if err != nil {
			respondError(w, http.StatusNotFound, "no quiz for this course")
			return
		}
		if err := sess.Retry(); err != nil {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, sess.View())
	}
}

// LeaveQuizHandler discards the session when the user navigates away.
func LeaveQuizHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")
		svc.Discard(sub, courseID)
		w.WriteHeader(http.StatusNoContent)
	}
}
