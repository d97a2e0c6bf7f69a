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

type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id string) (*model.Course, error)
	// FindByIDForUpdate locks the course row for the duration of the
	// transaction so roster mutations serialize per course.
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error

	GetInstructorSections(ctx context.Context, tx *sql.Tx, courseID string) ([]model.InstructorSection, error)
	AddInstructor(ctx context.Context, tx *sql.Tx, courseID, instructorID, section string) error
	AddStudent(ctx context.Context, tx *sql.Tx, courseID, studentID string) error
}

type pgCourseRepository struct {
	db *sql.DB
}

func NewPgCourseRepository(db *sql.DB) CourseRepository {
	return &pgCourseRepository{db: db}
}

func (r *pgCourseRepository) Create(ctx context.Context, c *model.Course) error {
	query := `INSERT INTO courses (id, title, description, code, instructor_limit)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Title, c.Description, c.Code, c.InstructorLimit)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for code
			return fmt.Errorf("course code already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCourseRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	query := `SELECT id, title, description, code, instructor_limit, created_at, updated_at
	          FROM courses WHERE id = $1`
	c := &model.Course{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.Code, &c.InstructorLimit, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCourseRepository.FindByID: %w", err)
	}
	if err := r.loadInstructors(ctx, c); err != nil {
		return nil, err
	}
	if err := r.loadStudents(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgCourseRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Course, error) {
	query := `SELECT id, title, description, code, instructor_limit, created_at, updated_at
	          FROM courses WHERE id = $1 FOR UPDATE`
	c := &model.Course{}
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, id).Scan(
			&c.ID, &c.Title, &c.Description, &c.Code, &c.InstructorLimit, &c.CreatedAt, &c.UpdatedAt,
		)
	} else {
		err = r.db.QueryRowContext(ctx, query, id).Scan(
			&c.ID, &c.Title, &c.Description, &c.Code, &c.InstructorLimit, &c.CreatedAt, &c.UpdatedAt,
		)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCourseRepository.FindByIDForUpdate: %w", err)
	}
	return c, nil
}

func (r *pgCourseRepository) List(ctx context.Context) ([]model.Course, error) {
	query := `SELECT id, title, description, code, instructor_limit, created_at, updated_at
	          FROM courses ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.List: %w", err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c := model.Course{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Code, &c.InstructorLimit, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgCourseRepository.List scan: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range courses {
		if err := r.loadInstructors(ctx, &courses[i]); err != nil {
			return nil, err
		}
	}
	return courses, nil
}

func (r *pgCourseRepository) Update(ctx context.Context, c *model.Course) error {
	query := `UPDATE courses SET title = $1, description = $2, code = $3,
	              instructor_limit = $4, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, c.Title, c.Description, c.Code, c.InstructorLimit, c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("course code already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCourseRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCourseRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCourseRepository) GetInstructorSections(ctx context.Context, tx *sql.Tx, courseID string) ([]model.InstructorSection, error) {
	query := `SELECT instructor_id, section FROM course_instructors
	          WHERE course_id = $1 ORDER BY created_at`
	var rows *sql.Rows
	var err error
	if tx != nil {
		rows, err = tx.QueryContext(ctx, query, courseID)
	} else {
		rows, err = r.db.QueryContext(ctx, query, courseID)
	}
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.GetInstructorSections: %w", err)
	}
	defer rows.Close()

	sections := []model.InstructorSection{}
	for rows.Next() {
		var s model.InstructorSection
		if err := rows.Scan(&s.InstructorID, &s.Section); err != nil {
			return nil, fmt.Errorf("pgCourseRepository.GetInstructorSections scan: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

func (r *pgCourseRepository) AddInstructor(ctx context.Context, tx *sql.Tx, courseID, instructorID, section string) error {
	query := `INSERT INTO course_instructors (course_id, instructor_id, section)
	          VALUES ($1, $2, $3)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, courseID, instructorID, section)
	} else {
		_, err = r.db.ExecContext(ctx, query, courseID, instructorID, section)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("instructor or section already present on course: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCourseRepository.AddInstructor: %w", err)
	}
	return nil
}

func (r *pgCourseRepository) AddStudent(ctx context.Context, tx *sql.Tx, courseID, studentID string) error {
	// Re-enrolling with a second instructor keeps a single roster row.
	query := `INSERT INTO course_students (course_id, student_id)
	          VALUES ($1, $2) ON CONFLICT DO NOTHING`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, courseID, studentID)
	} else {
		_, err = r.db.ExecContext(ctx, query, courseID, studentID)
	}
	if err != nil {
		return fmt.Errorf("pgCourseRepository.AddStudent: %w", err)
	}
	return nil
}

func (r *pgCourseRepository) loadInstructors(ctx context.Context, c *model.Course) error {
	query := `SELECT u.id, u.name, u.email, ci.section
	          FROM course_instructors ci
	          JOIN users u ON u.id = ci.instructor_id
	          WHERE ci.course_id = $1 ORDER BY ci.created_at`
	rows, err := r.db.QueryContext(ctx, query, c.ID)
	if err != nil {
		return fmt.Errorf("pgCourseRepository.loadInstructors: %w", err)
	}
	defer rows.Close()

	c.Instructors = []model.UserRef{}
	c.Sections = []model.InstructorSection{}
	for rows.Next() {
		var ref model.UserRef
		var section string
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email, &section); err != nil {
			return fmt.Errorf("pgCourseRepository.loadInstructors scan: %w", err)
		}
		c.Instructors = append(c.Instructors, ref)
		c.Sections = append(c.Sections, model.InstructorSection{InstructorID: ref.ID, Section: section})
	}
	return rows.Err()
}

func (r *pgCourseRepository) loadStudents(ctx context.Context, c *model.Course) error {
	query := `SELECT u.id, u.name, u.email
	          FROM course_students cs
	          JOIN users u ON u.id = cs.student_id
	          WHERE cs.course_id = $1 ORDER BY cs.created_at`
	rows, err := r.db.QueryContext(ctx, query, c.ID)
	if err != nil {
		return fmt.Errorf("pgCourseRepository.loadStudents: %w", err)
	}
	defer rows.Close()

	c.Students = []model.UserRef{}
	for rows.Next() {
		var ref model.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email); err != nil {
			return fmt.Errorf("pgCourseRepository.loadStudents scan: %w", err)
		}
		c.Students = append(c.Students, ref)
	}
	return rows.Err()
}
