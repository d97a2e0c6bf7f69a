package handler

import (
	"encoding/json"
	"net/http"

	"campus_lms/internal/api/middleware"
	"campus_lms/internal/app/service"
	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CourseHandler struct {
	courseService *service.CourseService
	logger        *zap.Logger
}

func NewCourseHandler(courseService *service.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{courseService: courseService, logger: logger}
}

func (h *CourseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listCourses)
	r.Get("/{courseID}", h.getCourse)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRoles(model.RoleAdmin))
		admin.Post("/", h.createCourse)
		admin.Put("/{courseID}", h.updateCourse)
		admin.Delete("/{courseID}", h.deleteCourse)
	})

	r.With(middleware.RequireRoles(model.RoleInstructor)).Put("/{courseID}/join", h.joinCourse)
	r.With(middleware.RequireRoles(model.RoleStudent)).Put("/{courseID}/enroll", h.enrollCourse)
}

func (h *CourseHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.ListCourses(r.Context())
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseService.GetCourse(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	course, err := h.courseService.CreateCourse(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) updateCourse(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	course, err := h.courseService.UpdateCourse(r.Context(), chi.URLParam(r, "courseID"), req)
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.courseService.DeleteCourse(r.Context(), chi.URLParam(r, "courseID")); err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Course removed"})
}

func (h *CourseHandler) joinCourse(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	resp, err := h.courseService.JoinCourse(r.Context(), user.ID, chi.URLParam(r, "courseID"))
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *CourseHandler) enrollCourse(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	resp, err := h.courseService.EnrollStudent(r.Context(), user.ID, chi.URLParam(r, "courseID"), req)
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
