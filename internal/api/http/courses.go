package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vision-360/safety-lms/internal/activity"
	auth "github.com/vision-360/safety-lms/internal/auth/middleware"
	"github.com/vision-360/safety-lms/internal/catalog"
)

// ListCoursesHandler returns the catalog merged with the caller's enrollment.
func ListCoursesHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		out, err := store.ListCourses(r.Context(), sub)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not load courses")
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// GetCourseHandler returns one course plus its lessons with derived statuses.
func GetCourseHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		course, err := store.GetCourse(r.Context(), courseID)
		if err != nil {
			if errors.Is(err, catalog.ErrCourseNotFound) {
				respondError(w, http.StatusNotFound, "course not found")
			} else {
				respondError(w, http.StatusInternalServerError, "could not load course")
			}
			return
		}
		lessons, err := store.LessonViews(r.Context(), sub, courseID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not load lessons")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"course":  course,
			"lessons": lessons,
		})
	}
}

// StartLessonHandler moves a lesson into in-progress when it is unlocked.
func StartLessonHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")
		lessonID := chi.URLParam(r, "lessonID")

		err := store.StartLesson(r.Context(), sub, courseID, lessonID)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, catalog.ErrLessonNotFound):
			respondError(w, http.StatusNotFound, "lesson not found")
		case errors.Is(err, catalog.ErrLessonLocked):
			respondError(w, http.StatusConflict, "lesson is locked")
		default:
			respondError(w, http.StatusInternalServerError, "could not start lesson")
		}
	}
}

// CompleteLessonHandler marks a lesson completed and returns the updated
// enrollment progress.
func CompleteLessonHandler(store *catalog.Store, log *activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")
		lessonID := chi.URLParam(r, "lessonID")

		enr, err := store.CompleteLesson(r.Context(), sub, courseID, lessonID)
		switch {
		case err == nil:
			log.Record(r.Context(), sub, "lesson_completed", lessonID)
			respondJSON(w, http.StatusOK, enr)
		case errors.Is(err, catalog.ErrLessonNotFound):
			respondError(w, http.StatusNotFound, "lesson not found")
		case errors.Is(err, catalog.ErrLessonLocked):
			respondError(w, http.StatusConflict, "lesson is locked")
		case errors.Is(err, catalog.ErrBadTransition):
			respondError(w, http.StatusConflict, "lesson must be in progress to complete")
		default:
			respondError(w, http.StatusInternalServerError, "could not update progress")
		}
	}
}
