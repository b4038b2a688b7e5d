package models

import "time"

// Enrollment registers one student in one course for one semester.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_offering,priority:1" json:"student_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_offering,priority:2" json:"course_id"`
	SemesterID uint      `gorm:"not null;uniqueIndex:idx_enrollment_offering,priority:3" json:"semester_id"`
	CreatedAt  time.Time `json:"created_at"`
	Student    Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Course     Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
	Semester   Semester  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"semester"`
}

// Mark stores the obtained value of one component for one enrollment.
type Mark struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID  uint      `gorm:"not null;uniqueIndex:idx_mark_enrollment_component,priority:1" json:"enrollment_id"`
	ComponentID   uint      `gorm:"not null;uniqueIndex:idx_mark_enrollment_component,priority:2" json:"component_id"`
	ObtainedMarks float64   `gorm:"not null;default:0" json:"obtained_marks"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Attendance stores class totals for one enrollment. Last write wins.
type Attendance struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID    uint      `gorm:"not null;uniqueIndex" json:"enrollment_id"`
	TotalClasses    int       `gorm:"not null;default:0" json:"total_classes"`
	AttendedClasses int       `gorm:"not null;default:0" json:"attended_classes"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName keeps the singular table name used by reporting queries.
func (Attendance) TableName() string {
	return "attendance"
}
