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

type AssignmentHandler struct {
	assignmentService *service.AssignmentService
	logger            *zap.Logger
}

func NewAssignmentHandler(assignmentService *service.AssignmentService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService, logger: logger}
}

func (h *AssignmentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{courseID}", h.listAssignments)

	r.Group(func(instructor chi.Router) {
		instructor.Use(middleware.RequireRoles(model.RoleInstructor))
		instructor.Post("/", h.createAssignment)
		instructor.Put("/{assignmentID}", h.updateAssignment)
		instructor.Delete("/{assignmentID}", h.deleteAssignment)
		instructor.Get("/{assignmentID}/submissions", h.listSubmissions)
	})

	r.With(middleware.RequireRoles(model.RoleStudent)).Post("/{assignmentID}/submit", h.submitAssignment)
}

func (h *AssignmentHandler) listAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.assignmentService.ListAssignments(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandler) createAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	assignment, err := h.assignmentService.CreateAssignment(r.Context(), user, req)
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, assignment)
}

func (h *AssignmentHandler) updateAssignment(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	assignment, err := h.assignmentService.UpdateAssignment(r.Context(), chi.URLParam(r, "assignmentID"), req)
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, assignment)
}

func (h *AssignmentHandler) deleteAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.assignmentService.DeleteAssignment(r.Context(), chi.URLParam(r, "assignmentID")); err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Assignment removed"})
}

func (h *AssignmentHandler) submitAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.SubmitAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	submission, err := h.assignmentService.SubmitAssignment(r.Context(), user.ID, chi.URLParam(r, "assignmentID"), req)
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, submission)
}

func (h *AssignmentHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.assignmentService.ListSubmissions(r.Context(), chi.URLParam(r, "assignmentID"))
	if err != nil {
		common.RespondWithDomainError(w, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}
