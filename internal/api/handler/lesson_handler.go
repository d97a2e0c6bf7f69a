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

type LessonHandler struct {
	lessonService *service.LessonService
	logger        *zap.Logger
}

func NewLessonHandler(lessonService *service.LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{lessonService: lessonService, logger: logger}
}

func (h *LessonHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{courseID}", h.listLessons)

	r.Group(func(teaching chi.Router) {
		teaching.Use(middleware.RequireRoles(model.RoleInstructor, model.RoleAdmin))
		teaching.Post("/", h.createLesson)
		teaching.Put("/{lessonID}", h.updateLesson)
		teaching.Delete("/{lessonID}", h.deleteLesson)
	})

	r.With(middleware.RequireRoles(model.RoleStudent)).Put("/{lessonID}/complete", h.completeLesson)
}

func (h *LessonHandler) listLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.lessonService.ListLessons(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, lessons)
}

func (h *LessonHandler) createLesson(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	lesson, err := h.lessonService.CreateLesson(r.Context(), user, req)
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, lesson)
}

func (h *LessonHandler) updateLesson(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.UpdateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	lesson, err := h.lessonService.UpdateLesson(r.Context(), user, chi.URLParam(r, "lessonID"), req)
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, lesson)
}

func (h *LessonHandler) deleteLesson(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	if err := h.lessonService.DeleteLesson(r.Context(), user, chi.URLParam(r, "lessonID")); err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Lesson removed"})
}

func (h *LessonHandler) completeLesson(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CompleteLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	enrollment, err := h.lessonService.CompleteLesson(r.Context(), user.ID, chi.URLParam(r, "lessonID"), req)
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, enrollment)
}
