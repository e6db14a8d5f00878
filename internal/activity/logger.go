package activity

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
)

// Logger records user actions into activity_logs. Writes are best-effort:
// a failed insert is logged and swallowed, never surfaced to the caller.
type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger { return &Logger{db: db} }

// Record inserts one activity row. Anonymous actions (empty user id) are
// dropped silently, matching the original behavior.
func (l *Logger) Record(ctx context.Context, userID, action, details string) {
	if l == nil || userID == "" {
		return
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, user_id, action, details, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), userID, action, details, time.Now().Unix())
	if err != nil {
		log.Printf("activity: record %q failed: %v", action, err)
	}
}

// Entry is one activity row joined with the actor's profile.
type Entry struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	CreatedAt int64  `json:"created_at"`
}

// Recent returns the newest entries, most recent first.
func (l *Logger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT a.id, a.user_id, COALESCE(p.full_name, ''), COALESCE(p.email, ''),
		        a.action, a.details, a.created_at
		   FROM activity_logs a
		   LEFT JOIN profiles p ON p.id=a.user_id
		  ORDER BY a.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.FullName, &e.Email, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
