// Package inmem provides map-backed implementations of the repository
// interfaces for tests and local experiments. Semantics mirror the Postgres
// implementations, including the uniqueness rules the schema enforces.
package inmem

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"
	"campus_lms/internal/domain/repository"
	"campus_lms/internal/platform/database"
)

type DB struct {
	mu  sync.Mutex
	seq int64

	users       map[string]model.User
	courses     map[string]model.Course
	instructors map[string][]model.InstructorSection // courseID -> roster in join order
	students    map[string][]string     // courseID -> studentIDs
	lessons     map[string]model.Lesson
	assignments map[string]model.Assignment
	submissions map[string]model.Submission
	enrollments map[string]model.Enrollment
	completed   map[string][]string // enrollmentID -> lessonIDs in completion order
}

func Open() *DB {
	return &DB{
		users:       map[string]model.User{},
		courses:     map[string]model.Course{},
		instructors: map[string][]model.InstructorSection{},
		students:    map[string][]string{},
		lessons:     map[string]model.Lesson{},
		assignments: map[string]model.Assignment{},
		submissions: map[string]model.Submission{},
		enrollments: map[string]model.Enrollment{},
		completed:   map[string][]string{},
	}
}

// next returns a strictly increasing timestamp so insertion order survives
// the sort-by-created-at listings.
func (db *DB) next() time.Time {
	db.seq++
	return time.Unix(0, db.seq)
}

// Transactor satisfies database.Transactor without real transactions; the
// repositories here ignore the tx handle.
type Transactor struct{}

func NewTransactor() database.Transactor { return Transactor{} }

func (Transactor) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

// ---- users ----

type userRepository struct{ db *DB }

func NewUserRepository(db *DB) repository.UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	user.CreatedAt = r.db.next()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = *user
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	users := make([]model.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	all, _ := r.List(ctx)
	users := []model.User{}
	for _, u := range all {
		if u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.users[user.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Name = user.Name
	stored.ProfileImage = user.ProfileImage
	stored.UpdatedAt = r.db.next()
	r.db.users[user.ID] = stored
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.db.users, id)
	return nil
}

// ---- courses ----

type courseRepository struct{ db *DB }

func NewCourseRepository(db *DB) repository.CourseRepository { return &courseRepository{db: db} }

func (r *courseRepository) Create(ctx context.Context, c *model.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.courses {
		if existing.Code == c.Code {
			return fmt.Errorf("course code already exists: %w", common.ErrConflict)
		}
	}
	c.CreatedAt = r.db.next()
	c.UpdatedAt = c.CreatedAt
	r.db.courses[c.ID] = *c
	return nil
}

func (r *courseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.courses[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c.Instructors = []model.UserRef{}
	c.Sections = []model.InstructorSection{}
	for _, row := range r.db.instructors[id] {
		if u, ok := r.db.users[row.InstructorID]; ok {
			c.Instructors = append(c.Instructors, model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email})
		} else {
			c.Instructors = append(c.Instructors, model.UserRef{ID: row.InstructorID})
		}
		c.Sections = append(c.Sections, row)
	}
	c.Students = []model.UserRef{}
	for _, sid := range r.db.students[id] {
		if u, ok := r.db.users[sid]; ok {
			c.Students = append(c.Students, model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email})
		} else {
			c.Students = append(c.Students, model.UserRef{ID: sid})
		}
	}
	return &c, nil
}

func (r *courseRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Course, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.courses[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &c, nil
}

func (r *courseRepository) List(ctx context.Context) ([]model.Course, error) {
	r.db.mu.Lock()
	ids := make([]string, 0, len(r.db.courses))
	for id := range r.db.courses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.db.courses[ids[i]].CreatedAt.Before(r.db.courses[ids[j]].CreatedAt)
	})
	r.db.mu.Unlock()

	courses := make([]model.Course, 0, len(ids))
	for _, id := range ids {
		c, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, nil
}

func (r *courseRepository) Update(ctx context.Context, c *model.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.courses[c.ID]
	if !ok {
		return common.ErrNotFound
	}
	for id, other := range r.db.courses {
		if id != c.ID && other.Code == c.Code {
			return fmt.Errorf("course code already exists: %w", common.ErrConflict)
		}
	}
	stored.Title = c.Title
	stored.Description = c.Description
	stored.Code = c.Code
	stored.InstructorLimit = c.InstructorLimit
	stored.UpdatedAt = r.db.next()
	r.db.courses[c.ID] = stored
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.courses[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.db.courses, id)
	delete(r.db.instructors, id)
	delete(r.db.students, id)
	return nil
}

func (r *courseRepository) GetInstructorSections(ctx context.Context, tx *sql.Tx, courseID string) ([]model.InstructorSection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	sections := []model.InstructorSection{}
	for _, row := range r.db.instructors[courseID] {
		sections = append(sections, row)
	}
	return sections, nil
}

func (r *courseRepository) AddInstructor(ctx context.Context, tx *sql.Tx, courseID, instructorID, section string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, row := range r.db.instructors[courseID] {
		if row.InstructorID == instructorID || row.Section == section {
			return fmt.Errorf("instructor or section already present on course: %w", common.ErrConflict)
		}
	}
	r.db.instructors[courseID] = append(r.db.instructors[courseID],
		model.InstructorSection{InstructorID: instructorID, Section: section})
	return nil
}

func (r *courseRepository) AddStudent(ctx context.Context, tx *sql.Tx, courseID, studentID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, sid := range r.db.students[courseID] {
		if sid == studentID {
			return nil
		}
	}
	r.db.students[courseID] = append(r.db.students[courseID], studentID)
	return nil
}

// ---- lessons ----

type lessonRepository struct{ db *DB }

func NewLessonRepository(db *DB) repository.LessonRepository { return &lessonRepository{db: db} }

func (r *lessonRepository) Create(ctx context.Context, l *model.Lesson) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l.CreatedAt = r.db.next()
	l.UpdatedAt = l.CreatedAt
	r.db.lessons[l.ID] = *l
	return nil
}

func (r *lessonRepository) FindByID(ctx context.Context, id string) (*model.Lesson, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.lessons[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &l, nil
}

func (r *lessonRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	lessons := []model.Lesson{}
	for _, l := range r.db.lessons {
		if l.CourseID == courseID {
			lessons = append(lessons, l)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].SequenceOrder < lessons[j].SequenceOrder })
	return lessons, nil
}

func (r *lessonRepository) Update(ctx context.Context, l *model.Lesson) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.lessons[l.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Title = l.Title
	stored.Content = l.Content
	stored.SequenceOrder = l.SequenceOrder
	stored.UpdatedAt = r.db.next()
	r.db.lessons[l.ID] = stored
	return nil
}

func (r *lessonRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.lessons[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.db.lessons, id)
	return nil
}

func (r *lessonRepository) CountByCourseAndInstructor(ctx context.Context, tx *sql.Tx, courseID, instructorID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	count := 0
	for _, l := range r.db.lessons {
		if l.CourseID == courseID && l.InstructorID == instructorID {
			count++
		}
	}
	return count, nil
}

// ---- assignments & submissions ----

type assignmentRepository struct{ db *DB }

func NewAssignmentRepository(db *DB) repository.AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a.CreatedAt = r.db.next()
	a.UpdatedAt = a.CreatedAt
	r.db.assignments[a.ID] = *a
	return nil
}

func (r *assignmentRepository) FindByID(ctx context.Context, id string) (*model.Assignment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.assignments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &a, nil
}

func (r *assignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	assignments := []model.Assignment{}
	for _, a := range r.db.assignments {
		if a.CourseID != courseID {
			continue
		}
		if u, ok := r.db.users[a.CreatedByID]; ok {
			ref := model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
			a.CreatedBy = &ref
		}
		assignments = append(assignments, a)
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].CreatedAt.After(assignments[j].CreatedAt) })
	return assignments, nil
}

func (r *assignmentRepository) Update(ctx context.Context, a *model.Assignment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.assignments[a.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Title = a.Title
	stored.Description = a.Description
	stored.DueDate = a.DueDate
	stored.UpdatedAt = r.db.next()
	r.db.assignments[a.ID] = stored
	return nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.assignments[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.db.assignments, id)
	return nil
}

type submissionRepository struct{ db *DB }

func NewSubmissionRepository(db *DB) repository.SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, s *model.Submission) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.submissions {
		if existing.AssignmentID == s.AssignmentID && existing.StudentID == s.StudentID {
			return fmt.Errorf("assignment already submitted: %w", common.ErrConflict)
		}
	}
	r.db.submissions[s.ID] = *s
	return nil
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]model.Submission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	submissions := []model.Submission{}
	for _, s := range r.db.submissions {
		if s.AssignmentID != assignmentID {
			continue
		}
		if u, ok := r.db.users[s.StudentID]; ok {
			ref := model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
			s.Student = &ref
		}
		submissions = append(submissions, s)
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].SubmittedAt.Before(submissions[j].SubmittedAt) })
	return submissions, nil
}

// ---- enrollments ----

type enrollmentRepository struct{ db *DB }

func NewEnrollmentRepository(db *DB) repository.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, tx *sql.Tx, e *model.Enrollment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.enrollments {
		if existing.StudentID == e.StudentID && existing.CourseID == e.CourseID && existing.InstructorID == e.InstructorID {
			return fmt.Errorf("already enrolled with this instructor: %w", common.ErrConflict)
		}
	}
	e.CreatedAt = r.db.next()
	e.UpdatedAt = e.CreatedAt
	stored := *e
	stored.Course = nil
	stored.Instructor = nil
	stored.CompletedLessons = nil
	r.db.enrollments[e.ID] = stored
	return nil
}

func (r *enrollmentRepository) FindByStudentAndCourse(ctx context.Context, tx *sql.Tx, studentID, courseID string) (*model.Enrollment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var found *model.Enrollment
	for _, e := range r.db.enrollments {
		if e.StudentID != studentID || e.CourseID != courseID {
			continue
		}
		e := e
		if found == nil || e.CreatedAt.Before(found.CreatedAt) {
			found = &e
		}
	}
	if found == nil {
		return nil, common.ErrNotFound
	}
	return found, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	enrollments := []model.Enrollment{}
	for _, e := range r.db.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if c, ok := r.db.courses[e.CourseID]; ok {
			course := c
			e.Course = &course
		}
		if u, ok := r.db.users[e.InstructorID]; ok {
			ref := model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
			e.Instructor = &ref
		}
		e.CompletedLessons = []string{}
		enrollments = append(enrollments, e)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt) })
	return enrollments, nil
}

func (r *enrollmentRepository) ListStudentsByCourseAndInstructor(ctx context.Context, courseID, instructorID string) ([]model.UserRef, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	type pair struct {
		ref model.UserRef
		at  time.Time
	}
	pairs := []pair{}
	for _, e := range r.db.enrollments {
		if e.CourseID != courseID || e.InstructorID != instructorID {
			continue
		}
		ref := model.UserRef{ID: e.StudentID}
		if u, ok := r.db.users[e.StudentID]; ok {
			ref = u.Ref()
		}
		pairs = append(pairs, pair{ref: ref, at: e.CreatedAt})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].at.Before(pairs[j].at) })
	students := make([]model.UserRef, 0, len(pairs))
	for _, p := range pairs {
		students = append(students, p.ref)
	}
	return students, nil
}

func (r *enrollmentRepository) MarkLessonCompleted(ctx context.Context, tx *sql.Tx, enrollmentID, lessonID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range r.db.completed[enrollmentID] {
		if id == lessonID {
			return false, nil
		}
	}
	r.db.completed[enrollmentID] = append(r.db.completed[enrollmentID], lessonID)
	return true, nil
}

func (r *enrollmentRepository) CountCompletedForInstructor(ctx context.Context, tx *sql.Tx, enrollmentID, instructorID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	count := 0
	for _, lessonID := range r.db.completed[enrollmentID] {
		if l, ok := r.db.lessons[lessonID]; ok && l.InstructorID == instructorID {
			count++
		}
	}
	return count, nil
}

func (r *enrollmentRepository) UpdateProgress(ctx context.Context, tx *sql.Tx, enrollmentID string, progress float64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e, ok := r.db.enrollments[enrollmentID]
	if !ok {
		return common.ErrNotFound
	}
	e.Progress = progress
	e.UpdatedAt = r.db.next()
	r.db.enrollments[enrollmentID] = e
	return nil
}

func (r *enrollmentRepository) GetCompletedLessons(ctx context.Context, enrollmentID string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]string, len(r.db.completed[enrollmentID]))
	copy(out, r.db.completed[enrollmentID])
	return out, nil
}
