package service

import (
	"context"
	"database/sql"
	"fmt"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"
	"campus_lms/internal/domain/repository"
	"campus_lms/internal/platform/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LessonService struct {
	lessonRepo     repository.LessonRepository
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	tx             database.Transactor
	logger         *zap.Logger
}

func NewLessonService(
	lessonRepo repository.LessonRepository,
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	tx database.Transactor,
	logger *zap.Logger,
) *LessonService {
	return &LessonService{
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		tx:             tx,
		logger:         logger,
	}
}

type CreateLessonRequest struct {
	CourseID      string `json:"courseId" validate:"required"`
	Title         string `json:"title" validate:"required"`
	Content       string `json:"content" validate:"required"`
	SequenceOrder int    `json:"sequenceOrder" validate:"min=0"`
}

type UpdateLessonRequest struct {
	Title         *string `json:"title,omitempty"`
	Content       *string `json:"content,omitempty"`
	SequenceOrder *int    `json:"sequenceOrder,omitempty" validate:"omitempty,min=0"`
}

type CompleteLessonRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

func (s *LessonService) ListLessons(ctx context.Context, courseID string) ([]model.Lesson, error) {
	return s.lessonRepo.ListByCourse(ctx, courseID)
}

func (s *LessonService) CreateLesson(ctx context.Context, caller *model.User, req CreateLessonRequest) (*model.Lesson, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.FindByID(ctx, req.CourseID); err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		ID:            uuid.NewString(),
		CourseID:      req.CourseID,
		InstructorID:  caller.ID,
		Title:         req.Title,
		Content:       req.Content,
		SequenceOrder: req.SequenceOrder,
	}
	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, err
	}
	return s.lessonRepo.FindByID(ctx, lesson.ID)
}

func (s *LessonService) UpdateLesson(ctx context.Context, caller *model.User, id string, req UpdateLessonRequest) (*model.Lesson, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	lesson, err := s.lessonRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkLessonOwnership(caller, lesson); err != nil {
		return nil, err
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.SequenceOrder != nil {
		lesson.SequenceOrder = *req.SequenceOrder
	}

	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return nil, err
	}
	return s.lessonRepo.FindByID(ctx, id)
}

func (s *LessonService) DeleteLesson(ctx context.Context, caller *model.User, id string) error {
	lesson, err := s.lessonRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkLessonOwnership(caller, lesson); err != nil {
		return err
	}
	return s.lessonRepo.Delete(ctx, id)
}

// checkLessonOwnership allows the authoring instructor or an admin. Note that
// assignments deliberately do not get the same check (see AssignmentService).
func checkLessonOwnership(caller *model.User, lesson *model.Lesson) error {
	if caller.Role == model.RoleAdmin {
		return nil
	}
	if lesson.InstructorID != caller.ID {
		return fmt.Errorf("not the owner of this lesson: %w", common.ErrForbidden)
	}
	return nil
}

// CompleteLesson records a completion for the caller's enrollment in the
// lesson's course and recomputes progress over the lessons authored by the
// enrollment's instructor. Marking the same lesson twice is a no-op that
// still returns the current enrollment state.
func (s *LessonService) CompleteLesson(ctx context.Context, studentID, lessonID string, req CompleteLessonRequest) (*model.Enrollment, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	lesson, err := s.lessonRepo.FindByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != req.CourseID {
		return nil, fmt.Errorf("lesson does not belong to this course: %w", common.ErrBadRequest)
	}

	var enrollment *model.Enrollment
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		enrollment, err = s.enrollmentRepo.FindByStudentAndCourse(ctx, tx, studentID, req.CourseID)
		if err != nil {
			return err
		}

		inserted, err := s.enrollmentRepo.MarkLessonCompleted(ctx, tx, enrollment.ID, lessonID)
		if err != nil {
			return err
		}

		completed, err := s.enrollmentRepo.CountCompletedForInstructor(ctx, tx, enrollment.ID, enrollment.InstructorID)
		if err != nil {
			return err
		}
		total, err := s.lessonRepo.CountByCourseAndInstructor(ctx, tx, req.CourseID, enrollment.InstructorID)
		if err != nil {
			return err
		}

		progress := float64(0)
		if total > 0 {
			progress = float64(completed) / float64(total) * 100
		}
		if progress > 100 {
			progress = 100
		}
		enrollment.Progress = progress

		if !inserted {
			return nil // Already completed; state unchanged.
		}
		return s.enrollmentRepo.UpdateProgress(ctx, tx, enrollment.ID, progress)
	})
	if err != nil {
		return nil, err
	}

	enrollment.CompletedLessons, err = s.enrollmentRepo.GetCompletedLessons(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("lesson completed",
		zap.String("studentID", studentID),
		zap.String("lessonID", lessonID),
		zap.Float64("progress", enrollment.Progress))
	return enrollment, nil
}
