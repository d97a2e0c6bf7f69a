package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, enrollment *model.Enrollment) error
	// FindByStudentAndCourse returns the caller's enrollment for a course.
	// With the section-aware model a student holds at most one enrollment per
	// (course, instructor); the earliest one wins for course-level lookups.
	FindByStudentAndCourse(ctx context.Context, tx *sql.Tx, studentID, courseID string) (*model.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	ListStudentsByCourseAndInstructor(ctx context.Context, courseID, instructorID string) ([]model.UserRef, error)

	// MarkLessonCompleted records a completion; returns false when the lesson
	// was already marked (the insert is a no-op).
	MarkLessonCompleted(ctx context.Context, tx *sql.Tx, enrollmentID, lessonID string) (bool, error)
	CountCompletedForInstructor(ctx context.Context, tx *sql.Tx, enrollmentID, instructorID string) (int, error)
	UpdateProgress(ctx context.Context, tx *sql.Tx, enrollmentID string, progress float64) error
	GetCompletedLessons(ctx context.Context, enrollmentID string) ([]string, error)
}

type pgEnrollmentRepository struct {
	db *sql.DB
}

func NewPgEnrollmentRepository(db *sql.DB) EnrollmentRepository {
	return &pgEnrollmentRepository{db: db}
}

func (r *pgEnrollmentRepository) Create(ctx context.Context, tx *sql.Tx, e *model.Enrollment) error {
	query := `INSERT INTO enrollments (id, student_id, course_id, instructor_id, progress)
	          VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, e.ID, e.StudentID, e.CourseID, e.InstructorID, e.Progress).
			Scan(&e.CreatedAt, &e.UpdatedAt)
	} else {
		err = r.db.QueryRowContext(ctx, query, e.ID, e.StudentID, e.CourseID, e.InstructorID, e.Progress).
			Scan(&e.CreatedAt, &e.UpdatedAt)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("already enrolled with this instructor: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgEnrollmentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgEnrollmentRepository) FindByStudentAndCourse(ctx context.Context, tx *sql.Tx, studentID, courseID string) (*model.Enrollment, error) {
	query := `SELECT id, student_id, course_id, instructor_id, progress, created_at, updated_at
	          FROM enrollments WHERE student_id = $1 AND course_id = $2
	          ORDER BY created_at LIMIT 1`
	e := &model.Enrollment{}
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, studentID, courseID).Scan(
			&e.ID, &e.StudentID, &e.CourseID, &e.InstructorID, &e.Progress, &e.CreatedAt, &e.UpdatedAt,
		)
	} else {
		err = r.db.QueryRowContext(ctx, query, studentID, courseID).Scan(
			&e.ID, &e.StudentID, &e.CourseID, &e.InstructorID, &e.Progress, &e.CreatedAt, &e.UpdatedAt,
		)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgEnrollmentRepository.FindByStudentAndCourse: %w", err)
	}
	return e, nil
}

func (r *pgEnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	query := `SELECT e.id, e.student_id, e.course_id, e.instructor_id, e.progress, e.created_at, e.updated_at,
	                 c.title, c.description, c.code,
	                 u.id, u.name, u.email
	          FROM enrollments e
	          JOIN courses c ON c.id = e.course_id
	          JOIN users u ON u.id = e.instructor_id
	          WHERE e.student_id = $1 ORDER BY e.created_at`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgEnrollmentRepository.ListByStudent: %w", err)
	}
	defer rows.Close()

	enrollments := []model.Enrollment{}
	for rows.Next() {
		e := model.Enrollment{}
		course := model.Course{}
		ref := model.UserRef{}
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.InstructorID, &e.Progress, &e.CreatedAt, &e.UpdatedAt,
			&course.Title, &course.Description, &course.Code,
			&ref.ID, &ref.Name, &ref.Email); err != nil {
			return nil, fmt.Errorf("pgEnrollmentRepository.ListByStudent scan: %w", err)
		}
		course.ID = e.CourseID
		e.Course = &course
		e.Instructor = &ref
		e.CompletedLessons = []string{}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

func (r *pgEnrollmentRepository) ListStudentsByCourseAndInstructor(ctx context.Context, courseID, instructorID string) ([]model.UserRef, error) {
	query := `SELECT u.id, u.name, u.email, u.profile_image
	          FROM enrollments e
	          JOIN users u ON u.id = e.student_id
	          WHERE e.course_id = $1 AND e.instructor_id = $2 ORDER BY e.created_at`
	rows, err := r.db.QueryContext(ctx, query, courseID, instructorID)
	if err != nil {
		return nil, fmt.Errorf("pgEnrollmentRepository.ListStudentsByCourseAndInstructor: %w", err)
	}
	defer rows.Close()

	students := []model.UserRef{}
	for rows.Next() {
		var ref model.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email, &ref.ProfileImage); err != nil {
			return nil, fmt.Errorf("pgEnrollmentRepository.ListStudentsByCourseAndInstructor scan: %w", err)
		}
		students = append(students, ref)
	}
	return students, rows.Err()
}

func (r *pgEnrollmentRepository) MarkLessonCompleted(ctx context.Context, tx *sql.Tx, enrollmentID, lessonID string) (bool, error) {
	query := `INSERT INTO enrollment_lessons (enrollment_id, lesson_id)
	          VALUES ($1, $2) ON CONFLICT DO NOTHING`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, enrollmentID, lessonID)
	} else {
		res, err = r.db.ExecContext(ctx, query, enrollmentID, lessonID)
	}
	if err != nil {
		return false, fmt.Errorf("pgEnrollmentRepository.MarkLessonCompleted: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *pgEnrollmentRepository) CountCompletedForInstructor(ctx context.Context, tx *sql.Tx, enrollmentID, instructorID string) (int, error) {
	// Only lessons authored by the enrollment's instructor count toward
	// progress; completions of other instructors' lessons are excluded.
	query := `SELECT COUNT(*)
	          FROM enrollment_lessons el
	          JOIN lessons l ON l.id = el.lesson_id
	          WHERE el.enrollment_id = $1 AND l.instructor_id = $2`
	var count int
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, enrollmentID, instructorID).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, query, enrollmentID, instructorID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("pgEnrollmentRepository.CountCompletedForInstructor: %w", err)
	}
	return count, nil
}

func (r *pgEnrollmentRepository) UpdateProgress(ctx context.Context, tx *sql.Tx, enrollmentID string, progress float64) error {
	query := `UPDATE enrollments SET progress = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, progress, enrollmentID)
	} else {
		_, err = r.db.ExecContext(ctx, query, progress, enrollmentID)
	}
	if err != nil {
		return fmt.Errorf("pgEnrollmentRepository.UpdateProgress: %w", err)
	}
	return nil
}

func (r *pgEnrollmentRepository) GetCompletedLessons(ctx context.Context, enrollmentID string) ([]string, error) {
	query := `SELECT lesson_id FROM enrollment_lessons WHERE enrollment_id = $1 ORDER BY completed_at`
	rows, err := r.db.QueryContext(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("pgEnrollmentRepository.GetCompletedLessons: %w", err)
	}
	defer rows.Close()

	lessons := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgEnrollmentRepository.GetCompletedLessons scan: %w", err)
		}
		lessons = append(lessons, id)
	}
	return lessons, rows.Err()
}
