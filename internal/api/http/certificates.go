package http

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vision-360/safety-lms/internal/activity"
	"github.com/vision-360/safety-lms/internal/assessment"
	auth "github.com/vision-360/safety-lms/internal/auth/middleware"
	"github.com/vision-360/safety-lms/internal/catalog"
	"github.com/vision-360/safety-lms/internal/certificate"
)

// ListCertificatesHandler returns the courses the caller has passed.
func ListCertificatesHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		out, err := store.PassedEnrollments(r.Context(), sub, assessment.PassThreshold)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not load certificates")
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// DownloadCertificateHandler renders and streams the PDF for a passed
// course. Only offered above the pass threshold.
func DownloadCertificateHandler(db *sql.DB, store *catalog.Store, renderer certificate.Renderer, log *activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		course, err := store.GetCourse(r.Context(), courseID)
		if err != nil {
			respondError(w, http.StatusNotFound, "course not found")
			return
		}

		row := db.QueryRowContext(r.Context(),
			`SELECT e.quiz_score, COALESCE(p.full_name, p.email)
			   FROM enrollments e
			   JOIN profiles p ON p.id=e.user_id
			  WHERE e.user_id=$1 AND e.course_id=$2`, sub, courseID)
		var score sql.NullInt64
		var name string
		if err := row.Scan(&score, &name); err != nil {
			respondError(w, http.StatusNotFound, "no completed assessment for this course")
			return
		}
		if !score.Valid || int(score.Int64) < assessment.PassThreshold {
			respondError(w, http.StatusForbidden, "certificate requires a passing score")
			return
		}

		pdf, err := renderer.Render(certificate.Certificate{
			RecipientName: name,
			CourseTitle:   course.Title,
			Score:         int(score.Int64),
			DateIssued:    time.Now(),
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not render certificate")
			return
		}

		log.Record(r.Context(), sub, "certificate_downloaded", courseID)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", certificate.Filename(course.Title)))
		_, _ = w.Write(pdf)
	}
}
