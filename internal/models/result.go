package models

import "time"

// Result is the latest computed outcome for an enrollment. It is replaced on
// every mark submission and only visible downstream while IsPublished is set.
type Result struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EnrollmentID uint       `gorm:"not null;uniqueIndex" json:"enrollment_id"`
	TotalPercent float64    `gorm:"not null;default:0" json:"total_percent"`
	LetterGrade  string     `gorm:"size:4;not null" json:"letter_grade"`
	GradePoint   float64    `gorm:"not null;default:0" json:"grade_point"`
	IsPublished  bool       `gorm:"not null;default:false;index" json:"is_published"`
	PublishedAt  *time.Time `json:"published_at"`
	ComputedAt   time.Time  `json:"computed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Enrollment   Enrollment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"enrollment"`
}
