package models

import "time"

// Course is a catalogue entry. Credit is the GPA aggregation weight.
type Course struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Code       string          `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Title      string          `gorm:"size:255;not null" json:"title"`
	Credit     float64         `gorm:"not null;default:0" json:"credit"`
	Components []MarkComponent `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"components,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Semester is an academic term ordered by Year then Sequence.
type Semester struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:64;not null" json:"name"`
	Year     int    `gorm:"not null;index:idx_semester_order,priority:1" json:"year"`
	Sequence int    `gorm:"not null;default:0;index:idx_semester_order,priority:2" json:"sequence"`
}

// MarkComponent is a weighted graded item of a course, such as a quiz or a final exam.
type MarkComponent struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	CourseID uint    `gorm:"not null;index" json:"course_id"`
	Name     string  `gorm:"size:128;not null" json:"name"`
	MaxMarks float64 `gorm:"not null" json:"max_marks"`
	Weight   float64 `gorm:"not null" json:"weight"`
}
