package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vision-360/safety-lms/internal/activity"
	auth "github.com/vision-360/safety-lms/internal/auth/middleware"
)

type profileRow struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// ListUsersHandler returns profiles, newest change first, with optional
// substring search on name/email.
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		var (
			rows *sql.Rows
			err  error
		)
		if q == "" {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id, email, full_name, role, created_at, updated_at
				   FROM profiles ORDER BY updated_at DESC`)
		} else {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id, email, full_name, role, created_at, updated_at
				   FROM profiles
				  WHERE email LIKE '%'||$1||'%' OR full_name LIKE '%'||$1||'%'
				  ORDER BY updated_at DESC`, q)
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not list users")
			return
		}
		defer rows.Close()

		out := []profileRow{}
		for rows.Next() {
			var p profileRow
			if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
				respondError(w, http.StatusInternalServerError, "could not list users")
				return
			}
			out = append(out, p)
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// CreateUserHandler provisions a profile with a bcrypt-hashed password.
func CreateUserHandler(db *sql.DB, log *activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			FullName string `json:"full_name"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "bad json")
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.Password == "" || req.FullName == "" {
			respondError(w, http.StatusBadRequest, "email, full_name and password required")
			return
		}
		if req.Role == "" {
			req.Role = "user"
		}
		if req.Role != "user" && req.Role != "admin" {
			respondError(w, http.StatusBadRequest, "invalid role: "+req.Role)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not hash password")
			return
		}
		id := uuid.NewString()
		now := time.Now().Unix()
		if _, err := db.ExecContext(r.Context(),
			`INSERT INTO profiles (id, email, full_name, role, password_hash, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
			id, req.Email, req.FullName, req.Role, string(hash), now); err != nil {
			respondError(w, http.StatusConflict, "could not create user (duplicate email?)")
			return
		}

		actor := auth.SubjectFromContext(r.Context())
		log.Record(r.Context(), actor, "user_created", req.Email)
		respondJSON(w, http.StatusCreated, profileRow{
			ID: id, Email: req.Email, FullName: req.FullName, Role: req.Role,
			CreatedAt: now, UpdatedAt: now,
		})
	}
}

// UpdateUserRoleHandler changes a profile's role.
func UpdateUserRoleHandler(db *sql.DB, log *activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		var req struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Role != "user" && req.Role != "admin") {
			respondError(w, http.StatusBadRequest, "role must be user or admin")
			return
		}

		res, err := db.ExecContext(r.Context(),
			`UPDATE profiles SET role=$1, updated_at=$2 WHERE id=$3`,
			req.Role, time.Now().Unix(), userID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not update role")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}

		actor := auth.SubjectFromContext(r.Context())
		log.Record(r.Context(), actor, "user_role_changed", userID+" -> "+req.Role)
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteUserHandler removes a profile and all of its learning data.
// Admins cannot delete themselves.
func DeleteUserHandler(db *sql.DB, log *activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		actor := auth.SubjectFromContext(r.Context())
		if userID == actor {
			respondError(w, http.StatusConflict, "cannot delete your own account")
			return
		}

		tx, err := db.BeginTx(r.Context(), nil)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not delete user")
			return
		}
		defer tx.Rollback()

		var exists int
		if err := tx.QueryRowContext(r.Context(),
			`SELECT 1 FROM profiles WHERE id=$1`, userID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(w, http.StatusNotFound, "user not found")
			} else {
				respondError(w, http.StatusInternalServerError, "could not delete user")
			}
			return
		}

		for _, q := range []string{
			`DELETE FROM lesson_progress WHERE user_id=$1`,
			`DELETE FROM enrollments WHERE user_id=$1`,
			`DELETE FROM profiles WHERE id=$1`,
		} {
			if _, err := tx.ExecContext(r.Context(), q, userID); err != nil {
				respondError(w, http.StatusInternalServerError, "could not delete user")
				return
			}
		}
		if err := tx.Commit(); err != nil {
			respondError(w, http.StatusInternalServerError, "could not delete user")
			return
		}

		log.Record(r.Context(), actor, "user_deleted", userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
