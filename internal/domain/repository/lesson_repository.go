package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"
)

type LessonRepository interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	FindByID(ctx context.Context, id string) (*model.Lesson, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error)
	Update(ctx context.Context, lesson *model.Lesson) error
	Delete(ctx context.Context, id string) error
	CountByCourseAndInstructor(ctx context.Context, tx *sql.Tx, courseID, instructorID string) (int, error)
}

type pgLessonRepository struct {
	db *sql.DB
}

func NewPgLessonRepository(db *sql.DB) LessonRepository {
	return &pgLessonRepository{db: db}
}

func (r *pgLessonRepository) Create(ctx context.Context, l *model.Lesson) error {
	query := `INSERT INTO lessons (id, course_id, instructor_id, title, content, sequence_order)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, l.ID, l.CourseID, l.InstructorID, l.Title, l.Content, l.SequenceOrder)
	if err != nil {
		return fmt.Errorf("pgLessonRepository.Create: %w", err)
	}
	return nil
}

func (r *pgLessonRepository) FindByID(ctx context.Context, id string) (*model.Lesson, error) {
	query := `SELECT id, course_id, instructor_id, title, content, sequence_order, created_at, updated_at
	          FROM lessons WHERE id = $1`
	l := &model.Lesson{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.CourseID, &l.InstructorID, &l.Title, &l.Content, &l.SequenceOrder, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgLessonRepository.FindByID: %w", err)
	}
	return l, nil
}

func (r *pgLessonRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error) {
	query := `SELECT id, course_id, instructor_id, title, content, sequence_order, created_at, updated_at
	          FROM lessons WHERE course_id = $1 ORDER BY sequence_order`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("pgLessonRepository.ListByCourse: %w", err)
	}
	defer rows.Close()

	lessons := []model.Lesson{}
	for rows.Next() {
		l := model.Lesson{}
		if err := rows.Scan(&l.ID, &l.CourseID, &l.InstructorID, &l.Title, &l.Content, &l.SequenceOrder, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgLessonRepository.ListByCourse scan: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (r *pgLessonRepository) Update(ctx context.Context, l *model.Lesson) error {
	query := `UPDATE lessons SET title = $1, content = $2, sequence_order = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, l.Title, l.Content, l.SequenceOrder, l.ID)
	if err != nil {
		return fmt.Errorf("pgLessonRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgLessonRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgLessonRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgLessonRepository) CountByCourseAndInstructor(ctx context.Context, tx *sql.Tx, courseID, instructorID string) (int, error) {
	query := `SELECT COUNT(*) FROM lessons WHERE course_id = $1 AND instructor_id = $2`
	var count int
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, courseID, instructorID).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, query, courseID, instructorID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("pgLessonRepository.CountByCourseAndInstructor: %w", err)
	}
	return count, nil
}
