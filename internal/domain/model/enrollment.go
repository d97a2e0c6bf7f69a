package model

import (
	"time"
)

type Enrollment struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"studentId"`
	Student          *UserRef  `json:"student,omitempty"`
	CourseID         string    `json:"courseId"`
	Course           *Course   `json:"course,omitempty"`
	InstructorID     string    `json:"instructorId"`
	Instructor       *UserRef  `json:"instructor,omitempty"`
	CompletedLessons []string  `json:"completedLessons"`
	Progress         float64   `json:"progress"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
