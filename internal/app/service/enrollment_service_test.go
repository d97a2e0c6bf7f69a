package service

import (
	"context"
	"testing"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ins := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	student := env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)
	course := env.createCourse(t, "Algorithms", 1)
	env.joinCourse(t, ins.ID, course.ID)
	lesson := env.createLesson(t, ins, course.ID, "Sorting", 1)
	env.enroll(t, student.ID, course.ID, ins.ID)

	_, err := env.lessons.CompleteLesson(ctx, student.ID, lesson.ID, CompleteLessonRequest{CourseID: course.ID})
	require.NoError(t, err)

	enrollment, err := env.enrollments.GetEnrollment(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{lesson.ID}, enrollment.CompletedLessons)
	assert.Equal(t, float64(100), enrollment.Progress)

	_, err = env.enrollments.GetEnrollment(ctx, student.ID, "missing-course")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListStudentsByInstructor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	b := env.registerUser(t, "Bea", "bea@example.com", model.RoleInstructor)
	bob := env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)
	cal := env.registerUser(t, "Cal", "cal@example.com", model.RoleStudent)
	course := env.createCourse(t, "Algorithms", 2)
	env.joinCourse(t, a.ID, course.ID)
	env.joinCourse(t, b.ID, course.ID)

	env.enroll(t, bob.ID, course.ID, a.ID)
	env.enroll(t, cal.ID, course.ID, b.ID)

	students, err := env.enrollments.ListStudentsByInstructor(ctx, course.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Bob", students[0].Name)

	students, err = env.enrollments.ListStudentsByInstructor(ctx, course.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Cal", students[0].Name)
}
