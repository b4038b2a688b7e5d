package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/grading"
	"github.com/noah-isme/gema-results-api/internal/models"
	"github.com/noah-isme/gema-results-api/internal/repository"
)

// ErrAttendanceNotFound indicates no attendance was recorded for the enrollment.
var ErrAttendanceNotFound = errors.New("attendance not found")

// AttendanceService records per-enrollment class totals.
type AttendanceService interface {
	Record(ctx context.Context, payload dto.AttendanceRequest, actor ActivityActor) (dto.AttendanceResponse, error)
	Get(ctx context.Context, enrollmentID uint) (dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo        repository.AttendanceRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo repository.AttendanceRepository, enrollments repository.EnrollmentRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		repo:        repo,
		enrollments: enrollments,
		validator:   validator,
		activity:    activity,
		logger:      logger.With().Str("component", "attendance_service").Logger(),
	}
}

func (s *attendanceService) Record(ctx context.Context, payload dto.AttendanceRequest, actor ActivityActor) (dto.AttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttendanceResponse{}, err
	}

	if _, err := s.enrollments.GetByID(ctx, payload.EnrollmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceResponse{}, ErrEnrollmentNotFound
		}
		return dto.AttendanceResponse{}, err
	}

	clamped := grading.NewAttendance(payload.EnrollmentID, payload.TotalClasses, payload.AttendedClasses)
	record := models.Attendance{
		EnrollmentID:    clamped.EnrollmentID,
		TotalClasses:    clamped.TotalClasses,
		AttendedClasses: clamped.AttendedClasses,
	}
	if err := s.repo.Upsert(ctx, &record); err != nil {
		s.logger.Error().Err(err).Uint("enroll_id", payload.EnrollmentID).Msg("failed to store attendance")
		return dto.AttendanceResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, ActionAttendanceRecorded, entityEnrollment, clamped.EnrollmentID, map[string]interface{}{
		"total_class":    clamped.TotalClasses,
		"attended_class": clamped.AttendedClasses,
	})

	return attendanceResponse(clamped), nil
}

func (s *attendanceService) Get(ctx context.Context, enrollmentID uint) (dto.AttendanceResponse, error) {
	record, err := s.repo.GetByEnrollment(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceResponse{}, ErrAttendanceNotFound
		}
		return dto.AttendanceResponse{}, err
	}
	return attendanceResponse(grading.NewAttendance(record.EnrollmentID, record.TotalClasses, record.AttendedClasses)), nil
}

func attendanceResponse(a grading.Attendance) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		EnrollmentID:      a.EnrollmentID,
		TotalClasses:      a.TotalClasses,
		AttendedClasses:   a.AttendedClasses,
		AttendancePercent: grading.Round(a.Percent(), 2),
	}
}
