package model

import (
	"time"
)

type Lesson struct {
	ID            string    `json:"id"`
	CourseID      string    `json:"courseId"`
	InstructorID  string    `json:"instructor"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	SequenceOrder int       `json:"sequenceOrder"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
