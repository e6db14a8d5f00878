package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"github.com/vision-360/safety-lms/internal/activity"
	api "github.com/vision-360/safety-lms/internal/api/http"
	"github.com/vision-360/safety-lms/internal/assessment"
	auth "github.com/vision-360/safety-lms/internal/auth/middleware"
	"github.com/vision-360/safety-lms/internal/catalog"
	"github.com/vision-360/safety-lms/internal/certificate"
	"github.com/vision-360/safety-lms/internal/config"
	"github.com/vision-360/safety-lms/internal/db"
	"github.com/vision-360/safety-lms/internal/panorama"
	"github.com/vision-360/safety-lms/internal/rbac"
	"github.com/vision-360/safety-lms/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg := config.FromEnv()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	activityLog := activity.NewLogger(dbh)
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	courseStore := catalog.NewStore(dbh)
	quizSource := assessment.NewCachedSource(assessment.NewSQLQuestionSource(dbh), 10*time.Minute)
	quizSvc := assessment.NewService(quizSource, assessment.NewSQLScoreStore(dbh))
	certRenderer := certificate.NewPDFRenderer()

	tours, err := panorama.LoadTours(cfg.TourConfig)
	if err != nil {
		return err
	}
	tourSvc := panorama.NewService(panorama.NewProvider(rendererLoad(cfg)), tours)

	bs, err := storage.NewFSStore(cfg.AssetBasePath)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	r.Post("/auth/login", auth.LoginHandler(dbh, authSvc, activityLog))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, bs)
		})

		pr.With(rbac.Require("profile:view")).
			Get("/me", api.GetProfileHandler(dbh))
		pr.With(rbac.Require("profile:update")).
			Patch("/me", api.UpdateProfileHandler(dbh, activityLog))
		pr.With(rbac.Require("user:change_password")).
			Post("/me/password", api.ChangePasswordHandler(dbh, activityLog))

		pr.With(rbac.Require("course:view")).
			Get("/courses", api.ListCoursesHandler(courseStore))
		pr.With(rbac.Require("course:view")).
			Get("/courses/{courseID}", api.GetCourseHandler(courseStore))
		pr.With(rbac.Require("lesson:start")).
			Post("/courses/{courseID}/lessons/{lessonID}/start", api.StartLessonHandler(courseStore))
		pr.With(rbac.Require("lesson:complete")).
			Post("/courses/{courseID}/lessons/{lessonID}/complete", api.CompleteLessonHandler(courseStore, activityLog))

		// Final assessment flow
		pr.With(rbac.Require("quiz:take")).
			Get("/courses/{courseID}/quiz", api.GetQuizHandler(quizSvc))
		pr.With(rbac.Require("quiz:take")).
			Post("/courses/{courseID}/quiz/answer", api.AnswerHandler(quizSvc))
		pr.With(rbac.Require("quiz:take")).
			Post("/courses/{courseID}/quiz/navigate", api.NavigateHandler(quizSvc))
		pr.With(rbac.Require("quiz:take")).
			Post("/courses/{courseID}/quiz/submit", api.SubmitQuizHandler(quizSvc, activityLog))
		pr.With(rbac.Require("quiz:take")).
			Post("/courses/{courseID}/quiz/retry", api.RetryQuizHandler(quizSvc))
		pr.With(rbac.Require("quiz:take")).
			Delete("/courses/{courseID}/quiz", api.LeaveQuizHandler(quizSvc))

		pr.With(rbac.Require("tour:view")).
			Get("/tours/{lessonTitle}", api.TourHandler(tourSvc))
		pr.With(rbac.Require("tour:view")).
			Post("/tours/{lessonTitle}/session", api.OpenTourHandler(tourSvc))
		pr.With(rbac.Require("tour:view")).
			Post("/tours/{lessonTitle}/session/hotspots/{index}", api.OpenHotspotHandler(tourSvc))
		pr.With(rbac.Require("tour:view")).
			Delete("/tours/{lessonTitle}/session", api.CloseTourHandler(tourSvc))

		pr.With(rbac.Require("certificate:download")).
			Get("/certificates", api.ListCertificatesHandler(courseStore))
		pr.With(rbac.Require("certificate:download")).
			Get("/certificates/{courseID}/download", api.DownloadCertificateHandler(dbh, courseStore, certRenderer, activityLog))

		// Admin surface
		pr.With(rbac.Require("users:list")).
			Get("/admin/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("users:create")).
			Post("/admin/users", api.CreateUserHandler(dbh, activityLog))
		pr.With(rbac.Require("users:update")).
			Patch("/admin/users/{userID}/role", api.UpdateUserRoleHandler(dbh, activityLog))
		pr.With(rbac.Require("users:delete")).
			Delete("/admin/users/{userID}", api.DeleteUserHandler(dbh, activityLog))
		pr.With(rbac.Require("logs:view")).
			Get("/admin/activity-logs", api.ActivityLogHandler(activityLog))
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("gateway listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down...")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return server.Shutdown(shutdownCtx)
}

// rendererLoad verifies the panorama rendering bundle is deployed under the
// asset base path. With no bundle configured the renderer is assumed
// available (clients load it from a CDN).
func rendererLoad(cfg config.Config) panorama.LoadFunc {
	return func(ctx context.Context) error {
		if cfg.RendererBundle == "" {
			return nil
		}
		_, err := os.Stat(filepath.Join(cfg.AssetBasePath, cfg.RendererBundle))
		return err
	}
}
