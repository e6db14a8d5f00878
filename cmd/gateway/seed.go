package main

import (
	"context"
	"database/sql"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/vision-360/safety-lms/internal/assessment"
	"github.com/vision-360/safety-lms/internal/config"
	"github.com/vision-360/safety-lms/internal/db"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo safety course and local accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

const demoCourseID = "truck-loading-safety"

func runSeed(ctx context.Context) error {
	cfg := config.FromEnv()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	if err := seedUsers(ctx, dbh); err != nil {
		return err
	}
	if err := seedCourse(ctx, dbh); err != nil {
		return err
	}
	if err := seedQuiz(ctx, dbh); err != nil {
		return err
	}
	log.Println("seed complete")
	return nil
}

func seedUsers(ctx context.Context, dbh *sql.DB) error {
	users := []struct {
		email, name, role, password string
	}{
		{"admin@vision360.example.com", "Site Administrator", "admin", "admin123"},
		{"demo@vision360.example.com", "Demo Learner", "user", "demo123"},
	}
	now := time.Now().Unix()
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), 12)
		if err != nil {
			return err
		}
		_, err = dbh.ExecContext(ctx,
			`INSERT INTO profiles (id, email, full_name, role, password_hash, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $6)
			 ON CONFLICT (email) DO NOTHING`,
			uuid.NewString(), u.email, u.name, u.role, string(hash), now)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedCourse(ctx context.Context, dbh *sql.DB) error {
	now := time.Now().Unix()
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO courses (id, title, description, category, duration_min, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description`,
		demoCourseID,
		"Truck Loading and Unloading Safety",
		"This comprehensive course covers all aspects of safe truck loading and unloading procedures in warehouse and logistics environments. You'll learn proper techniques, hazard identification, and emergency procedures to ensure workplace safety.",
		"Warehouse Operations", 240, now)
	if err != nil {
		return err
	}

	lessons := []struct {
		title    string
		duration int
	}{
		{"Introduction to Loading Safety", 20},
		{"Personal Protective Equipment (PPE)", 30},
		{"Pre-Operation Inspection", 25},
		{"Safe Loading Procedures", 35},
		{"Safe Unloading Procedures", 35},
		{"Hazard Identification", 30},
		{"Emergency Response Protocols", 25},
		{"Final Assessment", 40},
	}
	for i, l := range lessons {
		_, err := dbh.ExecContext(ctx,
			`INSERT INTO lessons (id, course_id, title, content, duration_min, order_index)
			 VALUES ($1, $2, $3, '', $4, $5)
			 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, order_index=EXCLUDED.order_index`,
			lessonID(i+1), demoCourseID, l.title, l.duration, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func lessonID(n int) string {
	return demoCourseID + "-lesson-" + strconv.Itoa(n)
}

func seedQuiz(ctx context.Context, dbh *sql.DB) error {
	set := assessment.QuestionSet{
		CourseID: demoCourseID,
		Questions: []assessment.Question{
			{
				ID:     "q1",
				Prompt: "What is the FIRST priority in any emergency situation?",
				Options: []assessment.Option{
					{ID: "a", Text: "Secure the cargo"},
					{ID: "b", Text: "Personal safety and evacuation"},
					{ID: "c", Text: "Notify management"},
					{ID: "d", Text: "Document the incident"},
				},
				Correct: "b",
			},
			{
				ID:     "q2",
				Prompt: "Before loading or unloading a truck, you should always:",
				Options: []assessment.Option{
					{ID: "a", Text: "Start immediately to save time"},
					{ID: "b", Text: "Wait for supervisor approval only"},
					{ID: "c", Text: "Perform a pre-operation safety inspection"},
					{ID: "d", Text: "Check the weather forecast"},
				},
				Correct: "c",
			},
			{
				ID:     "q3",
				Prompt: "Which PPE is mandatory for all loading dock operations?",
				Options: []assessment.Option{
					{ID: "a", Text: "Hard hat only"},
					{ID: "b", Text: "Safety glasses only"},
					{ID: "c", Text: "High-visibility vest, safety shoes, and gloves"},
					{ID: "d", Text: "Ear protection only"},
				},
				Correct: "c",
			},
			{
				ID:     "q4",
				Prompt: "True or False: It is acceptable to stand under a suspended load if you're watching carefully.",
				Options: []assessment.Option{
					{ID: "a", Text: "True - if you maintain visual contact"},
					{ID: "b", Text: "False - never stand under suspended loads"},
					{ID: "c", Text: "True - if the load is secured"},
					{ID: "d", Text: "Depends on the weight of the load"},
				},
				Correct: "b",
			},
			{
				ID:     "q5",
				Prompt: "What should you do if you discover damaged cargo that may contain hazardous materials?",
				Options: []assessment.Option{
					{ID: "a", Text: "Continue working but report it at the end of shift"},
					{ID: "b", Text: "Clean it up immediately"},
					{ID: "c", Text: "Stop work, evacuate the area, and report immediately"},
					{ID: "d", Text: "Take photos for documentation only"},
				},
				Correct: "c",
			},
		},
	}
	return assessment.NewSQLQuestionSource(dbh).PutQuestionSet(ctx, set)
}
