package model

import (
	"time"
)

// SectionPool is the fixed set of section labels an instructor can be
// assigned within a course. Labels are unique per course.
var SectionPool = []string{"v1", "v2", "v3", "v4", "v5", "v6", "v7", "v8", "v9", "v10"}

// InstructorSection links one instructor on a course roster to the section
// label that was assigned when they joined.
type InstructorSection struct {
	InstructorID string `json:"instructor"`
	Section      string `json:"section"`
}

type Course struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Code            string              `json:"code"`
	InstructorLimit int                 `json:"instructorLimit"`
	Instructors     []UserRef           `json:"instructors"`
	Sections        []InstructorSection `json:"instructorSections"`
	Students        []UserRef           `json:"students,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// TeachesCourse reports whether the given instructor is on the roster.
func (c *Course) TeachesCourse(instructorID string) bool {
	for _, ins := range c.Instructors {
		if ins.ID == instructorID {
			return true
		}
	}
	return false
}
