// Package api exposes the HTTP surface: routing, session middleware and the
// request handlers for auth, catalog, enrollment and educator operations.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"learnhub/internal/auth"
	"learnhub/internal/course"
	"learnhub/internal/educator"
	"learnhub/internal/shared"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	cfg       *shared.Config
	tokens    *auth.TokenManager
	auth      *auth.Service
	courses   *course.Service
	educators *educator.Service
}

// NewServer creates the HTTP server facade.
func NewServer(
	cfg *shared.Config,
	tokens *auth.TokenManager,
	authSvc *auth.Service,
	courseSvc *course.Service,
	educatorSvc *educator.Service,
) *Server {
	return &Server{
		cfg:       cfg,
		tokens:    tokens,
		auth:      authSvc,
		courses:   courseSvc,
		educators: educatorSvc,
	}
}

// Routes builds the chi router with the full API surface.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   s.cfg.CORS.AllowedMethods,
		AllowedHeaders:   s.cfg.CORS.AllowedHeaders,
		AllowCredentials: s.cfg.CORS.AllowCredentials,
		MaxAge:           s.cfg.CORS.MaxAge,
	}))

	r.Get("/api/health", s.handleHealth)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.With(optionalAuth(s.tokens)).Get("/check", s.handleCheck)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(s.tokens))
			r.Get("/me", s.handleMe)
			r.Put("/profile", s.handleUpdateProfile)
		})
	})

	r.Route("/api/courses", func(r chi.Router) {
		r.Get("/", s.handleListCourses)

		// Registered before /{courseID} so "enrolled" is never read as an ID.
		r.With(requireAuth(s.tokens)).Get("/enrolled", s.handleListEnrolled)

		r.With(optionalAuth(s.tokens)).Get("/{courseID}", s.handleGetCourse)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(s.tokens))
			r.Post("/{courseID}/enroll", s.handleEnroll)
			r.Delete("/{courseID}/unenroll", s.handleUnenroll)
			r.Put("/{courseID}/progress", s.handleMarkLecture)
			r.Put("/{courseID}/complete", s.handleCompleteCourse)
			r.Post("/{courseID}/rate", s.handleRateCourse)
		})
	})

	r.Route("/api/educator", func(r chi.Router) {
		r.Use(requireAuth(s.tokens))
		r.Use(requireRoles(shared.RoleEducator))

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/students", s.handleEnrolledStudents)
		r.Get("/courses", s.handleMyCourses)
		r.Post("/courses", s.handleCreateCourse)
		r.Put("/courses/{courseID}", s.handleUpdateCourse)
		r.Patch("/courses/{courseID}/publish", s.handlePublishCourse)
		r.Delete("/courses/{courseID}", s.handleDeleteCourse)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, true, "", map[string]any{
		"status": "ok",
	})
}
