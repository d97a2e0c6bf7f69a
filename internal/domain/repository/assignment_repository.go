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

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	FindByID(ctx context.Context, id string) (*model.Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error)
	Update(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, id string) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	ListByAssignment(ctx context.Context, assignmentID string) ([]model.Submission, error)
}

type pgAssignmentRepository struct {
	db *sql.DB
}

func NewPgAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &pgAssignmentRepository{db: db}
}

func (r *pgAssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	query := `INSERT INTO assignments (id, course_id, title, description, due_date, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.CourseID, a.Title, a.Description, a.DueDate, a.CreatedByID)
	if err != nil {
		return fmt.Errorf("pgAssignmentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAssignmentRepository) FindByID(ctx context.Context, id string) (*model.Assignment, error) {
	query := `SELECT id, course_id, title, description, due_date, created_by, created_at, updated_at
	          FROM assignments WHERE id = $1`
	a := &model.Assignment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.CourseID, &a.Title, &a.Description, &a.DueDate, &a.CreatedByID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAssignmentRepository.FindByID: %w", err)
	}
	return a, nil
}

func (r *pgAssignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error) {
	query := `SELECT a.id, a.course_id, a.title, a.description, a.due_date, a.created_by,
	                 a.created_at, a.updated_at, u.id, u.name, u.email
	          FROM assignments a
	          JOIN users u ON u.id = a.created_by
	          WHERE a.course_id = $1 ORDER BY a.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("pgAssignmentRepository.ListByCourse: %w", err)
	}
	defer rows.Close()

	assignments := []model.Assignment{}
	for rows.Next() {
		a := model.Assignment{}
		ref := model.UserRef{}
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &a.DueDate, &a.CreatedByID,
			&a.CreatedAt, &a.UpdatedAt, &ref.ID, &ref.Name, &ref.Email); err != nil {
			return nil, fmt.Errorf("pgAssignmentRepository.ListByCourse scan: %w", err)
		}
		a.CreatedBy = &ref
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *pgAssignmentRepository) Update(ctx context.Context, a *model.Assignment) error {
	query := `UPDATE assignments SET title = $1, description = $2, due_date = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, a.Title, a.Description, a.DueDate, a.ID)
	if err != nil {
		return fmt.Errorf("pgAssignmentRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgAssignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgAssignmentRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	query := `INSERT INTO submissions (id, assignment_id, student_id, content, submitted_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.AssignmentID, s.StudentID, s.Content, s.SubmittedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // One submission per (assignment, student)
			return fmt.Errorf("assignment already submitted: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]model.Submission, error) {
	query := `SELECT s.id, s.assignment_id, s.student_id, s.content, s.submitted_at,
	                 u.id, u.name, u.email
	          FROM submissions s
	          JOIN users u ON u.id = s.student_id
	          WHERE s.assignment_id = $1 ORDER BY s.submitted_at`
	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByAssignment: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		s := model.Submission{}
		ref := model.UserRef{}
		if err := rows.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.Content, &s.SubmittedAt,
			&ref.ID, &ref.Name, &ref.Email); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByAssignment scan: %w", err)
		}
		s.Student = &ref
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}
