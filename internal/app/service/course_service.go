package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"
	"campus_lms/internal/domain/repository"
	"campus_lms/internal/platform/database"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type CourseService struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	tx             database.Transactor
	logger         *zap.Logger
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	tx database.Transactor,
	logger *zap.Logger,
) *CourseService {
	return &CourseService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		tx:             tx,
		logger:         logger,
	}
}

type CreateCourseRequest struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Code            string `json:"code"`
	InstructorLimit int    `json:"instructorLimit" validate:"omitempty,min=1"`
}

type UpdateCourseRequest struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Code            *string `json:"code,omitempty"`
	InstructorLimit *int    `json:"instructorLimit,omitempty" validate:"omitempty,min=1"`
}

type EnrollRequest struct {
	InstructorID string `json:"instructorId" validate:"required"`
}

// JoinCourseResponse is the updated course plus the section label the joining
// instructor was assigned.
type JoinCourseResponse struct {
	*model.Course
	AssignedSection string `json:"assignedSection"`
}

type EnrollResponse struct {
	Course     *model.Course     `json:"course"`
	Enrollment *model.Enrollment `json:"enrollment"`
}

func (s *CourseService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.courseRepo.List(ctx)
}

func (s *CourseService) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	return s.courseRepo.FindByID(ctx, id)
}

func (s *CourseService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*model.Course, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = strings.ToUpper(slug.Make(req.Title))
	}
	limit := req.InstructorLimit
	if limit == 0 {
		limit = 1 // Default
	}

	course := &model.Course{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Description:     req.Description,
		Code:            code,
		InstructorLimit: limit,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info("course created", zap.String("courseID", course.ID), zap.String("code", course.Code))

	return s.courseRepo.FindByID(ctx, course.ID)
}

func (s *CourseService) UpdateCourse(ctx context.Context, id string, req UpdateCourseRequest) (*model.Course, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Code != nil {
		course.Code = *req.Code
	}
	if req.InstructorLimit != nil {
		course.InstructorLimit = *req.InstructorLimit
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return s.courseRepo.FindByID(ctx, id)
}

func (s *CourseService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("course deleted", zap.String("courseID", id))
	return nil
}

// JoinCourse puts an instructor on a course roster and assigns a random free
// section label. The roster read and write happen under a row lock so
// concurrent joins cannot exceed the limit or reuse a label.
func (s *CourseService) JoinCourse(ctx context.Context, instructorID, courseID string) (*JoinCourseResponse, error) {
	var assigned string
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		course, err := s.courseRepo.FindByIDForUpdate(ctx, tx, courseID)
		if err != nil {
			return err
		}

		sections, err := s.courseRepo.GetInstructorSections(ctx, tx, courseID)
		if err != nil {
			return err
		}
		already := lo.ContainsBy(sections, func(sec model.InstructorSection) bool {
			return sec.InstructorID == instructorID
		})
		if already {
			return fmt.Errorf("already teaching this course: %w", common.ErrConflict)
		}
		if len(sections) >= course.InstructorLimit {
			return fmt.Errorf("course capacity reached: %w", common.ErrConflict)
		}

		used := lo.Map(sections, func(sec model.InstructorSection, _ int) string { return sec.Section })
		free := lo.Filter(model.SectionPool, func(label string, _ int) bool {
			return !lo.Contains(used, label)
		})
		if len(free) == 0 {
			return fmt.Errorf("no available sections: %w", common.ErrConflict)
		}
		assigned = free[rand.Intn(len(free))]

		return s.courseRepo.AddInstructor(ctx, tx, courseID, instructorID, assigned)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("instructor joined course",
		zap.String("courseID", courseID),
		zap.String("instructorID", instructorID),
		zap.String("section", assigned))

	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return &JoinCourseResponse{Course: course, AssignedSection: assigned}, nil
}

// EnrollStudent creates the enrollment row and appends the student to the
// course roster in one transaction.
func (s *CourseService) EnrollStudent(ctx context.Context, studentID, courseID string, req EnrollRequest) (*EnrollResponse, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("please select an instructor: %w", common.ErrBadRequest)
	}

	enrollment := &model.Enrollment{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		CourseID:     courseID,
		InstructorID: req.InstructorID,
		Progress:     0,
	}
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.courseRepo.FindByIDForUpdate(ctx, tx, courseID); err != nil {
			return err
		}

		sections, err := s.courseRepo.GetInstructorSections(ctx, tx, courseID)
		if err != nil {
			return err
		}
		teaches := lo.ContainsBy(sections, func(sec model.InstructorSection) bool {
			return sec.InstructorID == req.InstructorID
		})
		if !teaches {
			return fmt.Errorf("invalid instructor for this course: %w", common.ErrBadRequest)
		}

		if err := s.enrollmentRepo.Create(ctx, tx, enrollment); err != nil {
			return err
		}
		return s.courseRepo.AddStudent(ctx, tx, courseID, studentID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("student enrolled",
		zap.String("courseID", courseID),
		zap.String("studentID", studentID),
		zap.String("instructorID", req.InstructorID))

	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrollment.CompletedLessons = []string{}
	return &EnrollResponse{Course: course, Enrollment: enrollment}, nil
}
