package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus_lms/internal/api"
	"campus_lms/internal/api/middleware"
	"campus_lms/internal/app/service"
	"campus_lms/internal/common/security"
	"campus_lms/internal/domain/repository"
	"campus_lms/internal/platform/config"
	"campus_lms/internal/platform/database"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer logger.Sync()

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	database.Connect()
	defer database.Close()

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	courseRepo := repository.NewPgCourseRepository(database.DB)
	lessonRepo := repository.NewPgLessonRepository(database.DB)
	assignmentRepo := repository.NewPgAssignmentRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	enrollmentRepo := repository.NewPgEnrollmentRepository(database.DB)
	tx := database.NewTransactor(database.DB)

	// 5. Initialize Services
	authService := service.NewAuthService(userRepo, logger)
	userService := service.NewUserService(userRepo, logger)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, tx, logger)
	lessonService := service.NewLessonService(lessonRepo, enrollmentRepo, courseRepo, tx, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, courseRepo, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, logger)

	// 6. Initialize Router & HTTP Server
	auth := middleware.NewAuthenticator(userRepo, logger)
	router := api.NewRouter(auth, logger, authService, userService, courseService, lessonService, assignmentService, enrollmentService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Could not listen", zap.String("port", config.AppConfig.APIPort), zap.Error(err))
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped gracefully.")
}
