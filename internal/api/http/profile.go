package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vision-360/safety-lms/internal/activity"
	auth "github.com/vision-360/safety-lms/internal/auth/middleware"
)

// GetProfileHandler returns the caller's own profile.
func GetProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())

		row := db.QueryRowContext(r.Context(),
			`SELECT id, email, full_name, role, created_at, updated_at FROM profiles WHERE id=$1`,
			userID)
		var p profileRow
		if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(w, http.StatusNotFound, "profile not found")
			} else {
				respondError(w, http.StatusInternalServerError, "could not load profile")
			}
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

// UpdateProfileHandler lets the caller change their own display name.
// Email and role are not self-editable.
func UpdateProfileHandler(db *sql.DB, log *activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())

		var req struct {
			FullName string `json:"full_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad json")
			return
		}
		req.FullName = strings.TrimSpace(req.FullName)
		if req.FullName == "" {
			respondError(w, http.StatusBadRequest, "full_name required")
			return
		}

		res, err := db.ExecContext(r.Context(),
			`UPDATE profiles SET full_name=$1, updated_at=$2 WHERE id=$3`,
			req.FullName, time.Now().Unix(), userID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not update profile")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			respondError(w, http.StatusNotFound, "profile not found")
			return
		}

		log.Record(r.Context(), userID, "profile_updated", "")
		w.WriteHeader(http.StatusNoContent)
	}
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePasswordHandler rotates the caller's password after verifying the
// current one.
func ChangePasswordHandler(db *sql.DB, log *activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())

		var req changePasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.NewPassword == "" {
			respondError(w, http.StatusBadRequest, "new password required")
			return
		}

		var storedHash string
		err := db.QueryRowContext(r.Context(),
			`SELECT password_hash FROM profiles WHERE id=$1`, userID).Scan(&storedHash)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(w, http.StatusNotFound, "user not found")
			} else {
				respondError(w, http.StatusInternalServerError, "could not load profile")
			}
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.OldPassword)) != nil {
			respondError(w, http.StatusForbidden, "incorrect old password")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not hash password")
			return
		}
		if _, err := db.ExecContext(r.Context(),
			`UPDATE profiles SET password_hash=$1, updated_at=$2 WHERE id=$3`,
			string(hash), time.Now().Unix(), userID); err != nil {
			respondError(w, http.StatusInternalServerError, "could not update password")
			return
		}

		log.Record(r.Context(), userID, "password_changed", "")
		w.WriteHeader(http.StatusNoContent)
	}
}
