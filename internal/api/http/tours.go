package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	auth "github.com/vision-360/safety-lms/internal/auth/middleware"
	"github.com/vision-360/safety-lms/internal/panorama"
)

// TourHandler serves the panorama configuration for a lesson title, or 404
// when the lesson has no tour. The lookup is the pure Tours map; the lesson
// view uses this to decide whether to render the panorama viewer at all.
func TourHandler(svc *panorama.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := chi.URLParam(r, "lessonTitle")
		cfg, ok := svc.Tour(title)
		if !ok {
			respondError(w, http.StatusNotFound, "no tour for this lesson")
			return
		}
		respondJSON(w, http.StatusOK, cfg)
	}
}

// OpenTourHandler binds the caller's viewer to the lesson's panorama. A
// renderer that failed to load yields 503 and the viewer stays inert.
func OpenTourHandler(svc *panorama.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		title := chi.URLParam(r, "lessonTitle")

		v, err := svc.Open(r.Context(), sub, title)
		switch {
		case err == nil:
			respondJSON(w, http.StatusOK, map[string]any{
				"available": v.Available(),
				"hotspots":  v.HotspotCount(),
			})
		case errors.Is(err, panorama.ErrNoTour):
			respondError(w, http.StatusNotFound, "no tour for this lesson")
		case errors.Is(err, panorama.ErrRendererUnavailable):
			respondError(w, http.StatusServiceUnavailable, "panorama renderer unavailable")
		default:
			respondError(w, http.StatusInternalServerError, "could not open tour")
		}
	}
}

// OpenHotspotHandler opens the tooltip for one hotspot, closing any other.
func OpenHotspotHandler(svc *panorama.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		title := chi.URLParam(r, "lessonTitle")

		idx, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid hotspot index")
			return
		}
		v, ok := svc.Viewer(sub, title)
		if !ok {
			respondError(w, http.StatusConflict, "tour is not open")
			return
		}
		h, err := v.OpenHotspot(idx)
		switch {
		case err == nil:
			respondJSON(w, http.StatusOK, h)
		case errors.Is(err, panorama.ErrHotspotRange):
			respondError(w, http.StatusNotFound, "no such hotspot")
		case errors.Is(err, panorama.ErrNoSession):
			respondError(w, http.StatusConflict, "panorama is not rendered")
		default:
			respondError(w, http.StatusInternalServerError, "could not open hotspot")
		}
	}
}

// CloseTourHandler discards the caller's viewer when the lesson view closes.
func CloseTourHandler(svc *panorama.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		title := chi.URLParam(r, "lessonTitle")
		svc.Discard(sub, title)
		w.WriteHeader(http.StatusNoContent)
	}
}
