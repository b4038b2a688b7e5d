package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-results-api/internal/models"
)

// AttendanceRepository stores per-enrollment attendance totals.
type AttendanceRepository interface {
	Upsert(ctx context.Context, record *models.Attendance) error
	GetByEnrollment(ctx context.Context, enrollmentID uint) (models.Attendance, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs the attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Upsert(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_classes", "attended_classes", "updated_at"}),
	}).Create(record).Error
}

func (r *attendanceRepository) GetByEnrollment(ctx context.Context, enrollmentID uint) (models.Attendance, error) {
	var record models.Attendance
	err := r.db.WithContext(ctx).Where("enrollment_id = ?", enrollmentID).Take(&record).Error
	return record, err
}

func (r *attendanceRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Attendance, error) {
	var records []models.Attendance
	err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Select("attendance.*").
		Joins("JOIN enrollments ON enrollments.id = attendance.enrollment_id").
		Where("enrollments.student_id = ?", studentID).
		Order("attendance.enrollment_id ASC").
		Find(&records).Error
	return records, err
}
