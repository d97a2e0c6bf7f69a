package service

import (
	"context"
	"testing"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	other := env.registerUser(t, "Bea", "bea@example.com", model.RoleInstructor)
	admin := env.registerUser(t, "Root", "root@example.com", model.RoleAdmin)
	course := env.createCourse(t, "Algorithms", 2)
	lesson := env.createLesson(t, owner, course.ID, "Sorting", 1)

	title := "Sorting, revisited"
	_, err := env.lessons.UpdateLesson(ctx, other, lesson.ID, UpdateLessonRequest{Title: &title})
	assert.ErrorIs(t, err, common.ErrForbidden)

	err = env.lessons.DeleteLesson(ctx, other, lesson.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	updated, err := env.lessons.UpdateLesson(ctx, admin, lesson.ID, UpdateLessonRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Sorting, revisited", updated.Title)

	updated, err = env.lessons.UpdateLesson(ctx, owner, lesson.ID, UpdateLessonRequest{Title: &lesson.Title})
	require.NoError(t, err)
	assert.Equal(t, "Sorting", updated.Title)
}

func TestListLessonsOrdered(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ins := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	course := env.createCourse(t, "Algorithms", 1)
	env.createLesson(t, ins, course.ID, "Third", 3)
	env.createLesson(t, ins, course.ID, "First", 1)
	env.createLesson(t, ins, course.ID, "Second", 2)

	lessons, err := env.lessons.ListLessons(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, "First", lessons[0].Title)
	assert.Equal(t, "Second", lessons[1].Title)
	assert.Equal(t, "Third", lessons[2].Title)
}

func TestCompleteLessonProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ins := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	student := env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)
	course := env.createCourse(t, "Algorithms", 1)
	env.joinCourse(t, ins.ID, course.ID)

	lessons := make([]*model.Lesson, 4)
	for i := range lessons {
		lessons[i] = env.createLesson(t, ins, course.ID, "Lesson", i+1)
	}
	env.enroll(t, student.ID, course.ID, ins.ID)

	enrollment, err := env.lessons.CompleteLesson(ctx, student.ID, lessons[0].ID, CompleteLessonRequest{CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, float64(25), enrollment.Progress)
	assert.Equal(t, []string{lessons[0].ID}, enrollment.CompletedLessons)

	// Completing the same lesson again changes nothing.
	enrollment, err = env.lessons.CompleteLesson(ctx, student.ID, lessons[0].ID, CompleteLessonRequest{CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, float64(25), enrollment.Progress)
	assert.Len(t, enrollment.CompletedLessons, 1)

	for _, l := range lessons[1:] {
		enrollment, err = env.lessons.CompleteLesson(ctx, student.ID, l.ID, CompleteLessonRequest{CourseID: course.ID})
		require.NoError(t, err)
	}
	assert.Equal(t, float64(100), enrollment.Progress)
	assert.Len(t, enrollment.CompletedLessons, 4)

	stored, err := env.enrollments.GetEnrollment(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), stored.Progress)
}

func TestCompleteLessonCountsOwnInstructorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	b := env.registerUser(t, "Bea", "bea@example.com", model.RoleInstructor)
	student := env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)
	course := env.createCourse(t, "Algorithms", 2)
	env.joinCourse(t, a.ID, course.ID)
	env.joinCourse(t, b.ID, course.ID)

	lessonA1 := env.createLesson(t, a, course.ID, "A1", 1)
	env.createLesson(t, a, course.ID, "A2", 2)
	lessonB1 := env.createLesson(t, b, course.ID, "B1", 3)

	env.enroll(t, student.ID, course.ID, a.ID)

	enrollment, err := env.lessons.CompleteLesson(ctx, student.ID, lessonA1.ID, CompleteLessonRequest{CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, float64(50), enrollment.Progress, "denominator is the enrolled instructor's lessons")

	// A lesson from another section's instructor is recorded but does not
	// move the percentage.
	enrollment, err = env.lessons.CompleteLesson(ctx, student.ID, lessonB1.ID, CompleteLessonRequest{CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, float64(50), enrollment.Progress)
	assert.Len(t, enrollment.CompletedLessons, 2)
}

func TestCompleteLessonZeroLessonInstructor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	b := env.registerUser(t, "Bea", "bea@example.com", model.RoleInstructor)
	student := env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)
	course := env.createCourse(t, "Algorithms", 2)
	env.joinCourse(t, a.ID, course.ID)
	env.joinCourse(t, b.ID, course.ID)

	// Enrolled with an instructor who authored nothing; the only lesson in
	// the course belongs to the other instructor.
	lesson := env.createLesson(t, b, course.ID, "B1", 1)
	env.enroll(t, student.ID, course.ID, a.ID)

	enrollment, err := env.lessons.CompleteLesson(ctx, student.ID, lesson.ID, CompleteLessonRequest{CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, float64(0), enrollment.Progress, "zero-lesson denominator yields zero, not a fault")
	assert.Equal(t, []string{lesson.ID}, enrollment.CompletedLessons)
}

func TestCompleteLessonErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ins := env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	student := env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)
	course := env.createCourse(t, "Algorithms", 1)
	otherCourse := env.createCourse(t, "Compilers", 1)
	env.joinCourse(t, ins.ID, course.ID)
	lesson := env.createLesson(t, ins, course.ID, "Sorting", 1)

	// Lesson belongs to a different course than the request claims.
	_, err := env.lessons.CompleteLesson(ctx, student.ID, lesson.ID, CompleteLessonRequest{CourseID: otherCourse.ID})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	// Not enrolled yet.
	_, err = env.lessons.CompleteLesson(ctx, student.ID, lesson.ID, CompleteLessonRequest{CourseID: course.ID})
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Unknown lesson.
	env.enroll(t, student.ID, course.ID, ins.ID)
	_, err = env.lessons.CompleteLesson(ctx, student.ID, "missing-id", CompleteLessonRequest{CourseID: course.ID})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
