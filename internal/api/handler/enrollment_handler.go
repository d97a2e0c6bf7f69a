package handler

import (
	"net/http"

	"campus_lms/internal/api/middleware"
	"campus_lms/internal/app/service"
	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
	logger            *zap.Logger
}

func NewEnrollmentHandler(enrollmentService *service.EnrollmentService, logger *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService, logger: logger}
}

func (h *EnrollmentHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRoles(model.RoleStudent)).Get("/", h.listEnrollments)
	r.With(middleware.RequireRoles(model.RoleStudent)).Get("/{courseID}", h.getEnrollment)
	r.With(middleware.RequireRoles(model.RoleInstructor, model.RoleAdmin)).
		Get("/course/{courseID}/instructor/{instructorID}", h.listStudentsByInstructor)
}

func (h *EnrollmentHandler) listEnrollments(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	enrollments, err := h.enrollmentService.ListEnrollments(r.Context(), user.ID)
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) getEnrollment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	enrollment, err := h.enrollmentService.GetEnrollment(r.Context(), user.ID, chi.URLParam(r, "courseID"))
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) listStudentsByInstructor(w http.ResponseWriter, r *http.Request) {
	students, err := h.enrollmentService.ListStudentsByInstructor(
		r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "instructorID"))
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, students)
}
