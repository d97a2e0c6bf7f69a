package service

import (
	"context"
	"fmt"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"
	"campus_lms/internal/domain/repository"

	"go.uber.org/zap"
)

type UserService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, common.ErrBadRequest)
	}
	return s.userRepo.ListByRole(ctx, role)
}

// DeleteUser removes a user; rosters, enrollments and submissions referencing
// the user go with it via foreign keys.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("userID", id))
	return nil
}
