package service

import (
	"context"
	"os"
	"testing"

	"campus_lms/internal/common/security"
	"campus_lms/internal/domain/model"
	"campus_lms/internal/domain/repository"
	"campus_lms/internal/domain/repository/inmem"
	"campus_lms/internal/platform/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	config.Load()
	security.InitJWT()
	os.Exit(m.Run())
}

type testEnv struct {
	db *inmem.DB

	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	lessonRepo     repository.LessonRepository
	assignmentRepo repository.AssignmentRepository
	submissionRepo repository.SubmissionRepository
	enrollmentRepo repository.EnrollmentRepository

	auth        *AuthService
	users       *UserService
	courses     *CourseService
	lessons     *LessonService
	assignments *AssignmentService
	enrollments *EnrollmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := inmem.Open()
	logger := zap.NewNop()
	tx := inmem.NewTransactor()

	env := &testEnv{
		db:             db,
		userRepo:       inmem.NewUserRepository(db),
		courseRepo:     inmem.NewCourseRepository(db),
		lessonRepo:     inmem.NewLessonRepository(db),
		assignmentRepo: inmem.NewAssignmentRepository(db),
		submissionRepo: inmem.NewSubmissionRepository(db),
		enrollmentRepo: inmem.NewEnrollmentRepository(db),
	}
	env.auth = NewAuthService(env.userRepo, logger)
	env.users = NewUserService(env.userRepo, logger)
	env.courses = NewCourseService(env.courseRepo, env.enrollmentRepo, tx, logger)
	env.lessons = NewLessonService(env.lessonRepo, env.enrollmentRepo, env.courseRepo, tx, logger)
	env.assignments = NewAssignmentService(env.assignmentRepo, env.submissionRepo, env.courseRepo, logger)
	env.enrollments = NewEnrollmentService(env.enrollmentRepo, logger)
	return env
}

func (env *testEnv) registerUser(t *testing.T, name, email string, role model.Role) *model.User {
	t.Helper()
	resp, err := env.auth.Register(context.Background(), RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return resp.User
}

func (env *testEnv) createCourse(t *testing.T, title string, limit int) *model.Course {
	t.Helper()
	course, err := env.courses.CreateCourse(context.Background(), CreateCourseRequest{
		Title:           title,
		Description:     "desc",
		InstructorLimit: limit,
	})
	require.NoError(t, err)
	return course
}

func (env *testEnv) joinCourse(t *testing.T, instructorID, courseID string) *JoinCourseResponse {
	t.Helper()
	resp, err := env.courses.JoinCourse(context.Background(), instructorID, courseID)
	require.NoError(t, err)
	return resp
}

func (env *testEnv) enroll(t *testing.T, studentID, courseID, instructorID string) *EnrollResponse {
	t.Helper()
	resp, err := env.courses.EnrollStudent(context.Background(), studentID, courseID, EnrollRequest{InstructorID: instructorID})
	require.NoError(t, err)
	return resp
}

func (env *testEnv) createLesson(t *testing.T, instructor *model.User, courseID, title string, order int) *model.Lesson {
	t.Helper()
	lesson, err := env.lessons.CreateLesson(context.Background(), instructor, CreateLessonRequest{
		CourseID:      courseID,
		Title:         title,
		Content:       "content",
		SequenceOrder: order,
	})
	require.NoError(t, err)
	return lesson
}
