package service

import (
	"context"

	"campus_lms/internal/domain/model"
	"campus_lms/internal/domain/repository"

	"go.uber.org/zap"
)

type EnrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	logger         *zap.Logger
}

func NewEnrollmentService(enrollmentRepo repository.EnrollmentRepository, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{enrollmentRepo: enrollmentRepo, logger: logger}
}

func (s *EnrollmentService) ListEnrollments(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	return s.enrollmentRepo.ListByStudent(ctx, studentID)
}

func (s *EnrollmentService) GetEnrollment(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.FindByStudentAndCourse(ctx, nil, studentID, courseID)
	if err != nil {
		return nil, err
	}
	enrollment.CompletedLessons, err = s.enrollmentRepo.GetCompletedLessons(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) ListStudentsByInstructor(ctx context.Context, courseID, instructorID string) ([]model.UserRef, error) {
	return s.enrollmentRepo.ListStudentsByCourseAndInstructor(ctx, courseID, instructorID)
}
