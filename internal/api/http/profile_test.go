package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vision-360/safety-lms/internal/activity"
	auth "github.com/vision-360/safety-lms/internal/auth/middleware"
	"github.com/vision-360/safety-lms/internal/db"
	"github.com/vision-360/safety-lms/internal/rbac"
)

func newProfileRouter(t *testing.T) (*chi.Mux, *sql.DB, string) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "profile.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("old-pass"), 12)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now().Unix()
	if _, err := dbh.ExecContext(context.Background(),
		`INSERT INTO profiles (id, email, full_name, role, password_hash, created_at, updated_at)
		 VALUES ('u1', 'learner@example.com', 'Learner One', 'user', $1, $2, $2)`,
		string(hash), now); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	authSvc := auth.NewAuthService("test-secret")
	tok, err := authSvc.IssueJWT("u1", "user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	log := activity.NewLogger(dbh)
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.With(rbac.Require("profile:view")).Get("/me", GetProfileHandler(dbh))
		pr.With(rbac.Require("profile:update")).Patch("/me", UpdateProfileHandler(dbh, log))
		pr.With(rbac.Require("user:change_password")).Post("/me/password", ChangePasswordHandler(dbh, log))
	})
	return r, dbh, tok
}

func TestGetOwnProfile(t *testing.T) {
	r, _, tok := newProfileRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/me", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var p profileRow
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != "u1" || p.Email != "learner@example.com" || p.FullName != "Learner One" {
		t.Fatalf("profile = %+v", p)
	}
}

func TestUpdateOwnFullName(t *testing.T) {
	r, dbh, tok := newProfileRouter(t)

	rec := doJSON(t, r, http.MethodPatch, "/me", tok,
		map[string]string{"full_name": "Learner Renamed"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var name string
	if err := dbh.QueryRowContext(context.Background(),
		`SELECT full_name FROM profiles WHERE id='u1'`).Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "Learner Renamed" {
		t.Fatalf("full_name = %q", name)
	}

	rec = doJSON(t, r, http.MethodPatch, "/me", tok, map[string]string{"full_name": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank name: status = %d", rec.Code)
	}
}

func TestChangeOwnPassword(t *testing.T) {
	r, dbh, tok := newProfileRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/me/password", tok,
		changePasswordReq{OldPassword: "wrong", NewPassword: "new-pass"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong old password: status = %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/me/password", tok,
		changePasswordReq{OldPassword: "old-pass", NewPassword: ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty new password: status = %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/me/password", tok,
		changePasswordReq{OldPassword: "old-pass", NewPassword: "new-pass"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var hash string
	if err := dbh.QueryRowContext(context.Background(),
		`SELECT password_hash FROM profiles WHERE id='u1'`).Scan(&hash); err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-pass")) != nil {
		t.Fatal("stored hash does not match the new password")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("old-pass")) == nil {
		t.Fatal("old password still accepted")
	}
}
