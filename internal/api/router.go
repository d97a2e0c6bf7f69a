package api

import (
	"net/http"
	"time"

	"campus_lms/internal/api/handler"
	"campus_lms/internal/api/middleware"
	"campus_lms/internal/app/service"
	"campus_lms/internal/common/security"
	"campus_lms/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

func NewRouter(
	auth *middleware.Authenticator,
	logger *zap.Logger,
	authService *service.AuthService,
	userService *service.UserService,
	courseService *service.CourseService,
	lessonService *service.LessonService,
	assignmentService *service.AssignmentService,
	enrollmentService *service.EnrollmentService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// The SPA frontend is served from a different origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.AppConfig.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Verifies the bearer token and puts claims in context; resolution to a
	// user record happens in the Authenticator middleware below.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	courseHandler := handler.NewCourseHandler(courseService, logger)
	lessonHandler := handler.NewLessonHandler(lessonService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, logger)

	r.Route("/api", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(a chi.Router) {
			authHandler.RegisterPublicRoutes(a)
			a.Group(func(protected chi.Router) {
				protected.Use(auth.Handle)
				authHandler.RegisterProtectedRoutes(protected)
			})
		})

		// Everything else requires an authenticated caller.
		api.Group(func(protected chi.Router) {
			protected.Use(auth.Handle)
			protected.Route("/users", userHandler.RegisterRoutes)
			protected.Route("/courses", courseHandler.RegisterRoutes)
			protected.Route("/lessons", lessonHandler.RegisterRoutes)
			protected.Route("/assignments", assignmentHandler.RegisterRoutes)
			protected.Route("/enrollments", enrollmentHandler.RegisterRoutes)
		})
	})

	return r
}
