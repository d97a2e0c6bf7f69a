package model

import (
	"time"
)

type Assignment struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"courseId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	CreatedByID string    `json:"createdById"`
	CreatedBy   *UserRef  `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Submission struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignmentId"`
	StudentID    string    `json:"studentId"`
	Student      *UserRef  `json:"student,omitempty"`
	Content      string    `json:"content"`
	SubmittedAt  time.Time `json:"submittedAt"`
}
