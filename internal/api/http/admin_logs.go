package http

import (
	"net/http"
	"strconv"

	"github.com/vision-360/safety-lms/internal/activity"
)

// ActivityLogHandler returns the most recent activity entries for the
// admin dashboard. Optional ?limit=N, capped server-side.
func ActivityLogHandler(log *activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				respondError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}
		entries, err := log.Recent(r.Context(), limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not read activity log")
			return
		}
		respondJSON(w, http.StatusOK, entries)
	}
}
