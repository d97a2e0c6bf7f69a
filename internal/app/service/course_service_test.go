package service

import (
	"context"
	"fmt"
	"testing"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.courses.CreateCourse(ctx, CreateCourseRequest{
		Title:       "Intro to Databases",
		Description: "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, "INTRO-TO-DATABASES", course.Code, "code derived from title when omitted")
	assert.Equal(t, 1, course.InstructorLimit)
	assert.Empty(t, course.Instructors)

	_, err = env.courses.CreateCourse(ctx, CreateCourseRequest{Title: "Intro to Databases", Description: "again"})
	assert.ErrorIs(t, err, common.ErrConflict, "duplicate course code is rejected")
}

func TestJoinCourseAssignsDistinctSections(t *testing.T) {
	env := newTestEnv(t)
	a := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	b := env.registerUser(t, "Bea", "bea@example.com", model.RoleInstructor)
	course := env.createCourse(t, "Algorithms", 2)

	respA := env.joinCourse(t, a.ID, course.ID)
	respB := env.joinCourse(t, b.ID, course.ID)

	assert.Contains(t, model.SectionPool, respA.AssignedSection)
	assert.Contains(t, model.SectionPool, respB.AssignedSection)
	assert.NotEqual(t, respA.AssignedSection, respB.AssignedSection)

	require.Len(t, respB.Course.Sections, 2)
	assert.True(t, respB.Course.TeachesCourse(a.ID))
	assert.True(t, respB.Course.TeachesCourse(b.ID))
}

func TestJoinCourseCapacityReached(t *testing.T) {
	env := newTestEnv(t)
	a := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	b := env.registerUser(t, "Bea", "bea@example.com", model.RoleInstructor)
	c := env.registerUser(t, "Cy", "cy@example.com", model.RoleInstructor)
	course := env.createCourse(t, "Algorithms", 2)

	env.joinCourse(t, a.ID, course.ID)
	env.joinCourse(t, b.ID, course.ID)

	_, err := env.courses.JoinCourse(context.Background(), c.ID, course.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, err.Error(), "capacity")
}

func TestJoinCourseTwice(t *testing.T) {
	env := newTestEnv(t)
	a := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	course := env.createCourse(t, "Algorithms", 3)
	env.joinCourse(t, a.ID, course.ID)

	_, err := env.courses.JoinCourse(context.Background(), a.ID, course.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, err.Error(), "already teaching")
}

func TestJoinCourseSectionPoolExhausted(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Mega Course", len(model.SectionPool)+5)

	for i := 0; i < len(model.SectionPool); i++ {
		ins := env.registerUser(t, fmt.Sprintf("Ins %d", i), fmt.Sprintf("ins%d@example.com", i), model.RoleInstructor)
		env.joinCourse(t, ins.ID, course.ID)
	}

	extra := env.registerUser(t, "Late", "late@example.com", model.RoleInstructor)
	_, err := env.courses.JoinCourse(context.Background(), extra.ID, course.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, err.Error(), "no available sections")

	got, err := env.courses.GetCourse(context.Background(), course.ID)
	require.NoError(t, err)
	labels := lo.Map(got.Sections, func(sec model.InstructorSection, _ int) string { return sec.Section })
	assert.ElementsMatch(t, model.SectionPool, labels, "every label used exactly once")
}

func TestEnrollStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ins := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	student := env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)
	course := env.createCourse(t, "Algorithms", 1)
	env.joinCourse(t, ins.ID, course.ID)

	resp := env.enroll(t, student.ID, course.ID, ins.ID)
	assert.Equal(t, float64(0), resp.Enrollment.Progress)
	assert.Equal(t, ins.ID, resp.Enrollment.InstructorID)
	assert.NotNil(t, resp.Enrollment.CompletedLessons)
	assert.False(t, resp.Enrollment.CreatedAt.IsZero(), "persisted timestamps returned to the caller")
	assert.False(t, resp.Enrollment.UpdatedAt.IsZero())
	require.Len(t, resp.Course.Students, 1)
	assert.Equal(t, student.ID, resp.Course.Students[0].ID)

	enrollments, err := env.enrollments.ListEnrollments(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, course.ID, enrollments[0].CourseID)
}

func TestEnrollStudentDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ins := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	student := env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)
	course := env.createCourse(t, "Algorithms", 1)
	env.joinCourse(t, ins.ID, course.ID)
	env.enroll(t, student.ID, course.ID, ins.ID)

	_, err := env.courses.EnrollStudent(context.Background(), student.ID, course.ID, EnrollRequest{InstructorID: ins.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, err.Error(), "already enrolled")
}

func TestEnrollStudentInvalidInstructor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ins := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	outsider := env.registerUser(t, "Out", "out@example.com", model.RoleInstructor)
	student := env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)
	course := env.createCourse(t, "Algorithms", 2)
	env.joinCourse(t, ins.ID, course.ID)

	// Instructor exists but does not teach this course.
	_, err := env.courses.EnrollStudent(ctx, student.ID, course.ID, EnrollRequest{InstructorID: outsider.ID})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	// Missing instructor selection.
	_, err = env.courses.EnrollStudent(ctx, student.ID, course.ID, EnrollRequest{})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestUpdateCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Algorithms", 1)

	title := "Advanced Algorithms"
	limit := 4
	updated, err := env.courses.UpdateCourse(ctx, course.ID, UpdateCourseRequest{Title: &title, InstructorLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, "Advanced Algorithms", updated.Title)
	assert.Equal(t, 4, updated.InstructorLimit)
	assert.Equal(t, course.Code, updated.Code, "code untouched when omitted")

	_, err = env.courses.UpdateCourse(ctx, "missing-id", UpdateCourseRequest{Title: &title})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
