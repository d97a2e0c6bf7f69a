package service

import (
	"context"
	"time"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"
	"campus_lms/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AssignmentService struct {
	assignmentRepo repository.AssignmentRepository
	submissionRepo repository.SubmissionRepository
	courseRepo     repository.CourseRepository
	logger         *zap.Logger
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	submissionRepo repository.SubmissionRepository,
	courseRepo repository.CourseRepository,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		courseRepo:     courseRepo,
		logger:         logger,
	}
}

type CreateAssignmentRequest struct {
	CourseID    string    `json:"courseId" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
}

type UpdateAssignmentRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type SubmitAssignmentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (s *AssignmentService) ListAssignments(ctx context.Context, courseID string) ([]model.Assignment, error) {
	return s.assignmentRepo.ListByCourse(ctx, courseID)
}

func (s *AssignmentService) CreateAssignment(ctx context.Context, caller *model.User, req CreateAssignmentRequest) (*model.Assignment, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.FindByID(ctx, req.CourseID); err != nil {
		return nil, err
	}

	assignment := &model.Assignment{
		ID:          uuid.NewString(),
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedByID: caller.ID,
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	return s.assignmentRepo.FindByID(ctx, assignment.ID)
}

// UpdateAssignment is gated on the instructor role only; unlike lessons there
// is no ownership check, matching the permission model this API always had.
func (s *AssignmentService) UpdateAssignment(ctx context.Context, id string, req UpdateAssignmentRequest) (*model.Assignment, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.DueDate != nil {
		assignment.DueDate = *req.DueDate
	}

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, err
	}
	return s.assignmentRepo.FindByID(ctx, id)
}

func (s *AssignmentService) DeleteAssignment(ctx context.Context, id string) error {
	if _, err := s.assignmentRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.assignmentRepo.Delete(ctx, id)
}

// SubmitAssignment stores a student's submission with a server-assigned
// timestamp. The unique constraint rejects a second submission; there is no
// server-side due-date cutoff.
func (s *AssignmentService) SubmitAssignment(ctx context.Context, studentID, assignmentID string, req SubmitAssignmentRequest) (*model.Submission, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.assignmentRepo.FindByID(ctx, assignmentID); err != nil {
		return nil, err
	}

	submission := &model.Submission{
		ID:           uuid.NewString(),
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Content:      req.Content,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}
	s.logger.Info("assignment submitted",
		zap.String("assignmentID", assignmentID),
		zap.String("studentID", studentID))
	return submission, nil
}

func (s *AssignmentService) ListSubmissions(ctx context.Context, assignmentID string) ([]model.Submission, error) {
	if _, err := s.assignmentRepo.FindByID(ctx, assignmentID); err != nil {
		return nil, err
	}
	return s.submissionRepo.ListByAssignment(ctx, assignmentID)
}
