package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/grading"
	"github.com/noah-isme/gema-results-api/internal/models"
	"github.com/noah-isme/gema-results-api/internal/repository"
)

// ErrStudentNotFound indicates the authenticated user has no student profile.
var ErrStudentNotFound = errors.New("student not found")

// RiskUnknown labels users without a student profile.
const RiskUnknown = "unknown"

// StudentRecordService serves a student's own published academic record.
// Every view reads published results only.
type StudentRecordService interface {
	SemesterGPA(ctx context.Context, userID, semesterID uint) (dto.SemesterGpaResponse, error)
	CGPA(ctx context.Context, userID uint) (dto.CgpaResponse, error)
	Trend(ctx context.Context, userID uint) (dto.GpaTrendResponse, error)
	RiskStatus(ctx context.Context, userID uint) (dto.RiskStatusResponse, error)
	Transcript(ctx context.Context, userID uint) (dto.TranscriptResponse, error)
}

type studentRecordService struct {
	results     repository.ResultRepository
	attendance  repository.AttendanceRepository
	enrollments repository.EnrollmentRepository
	logger      zerolog.Logger
}

// NewStudentRecordService constructs the student record service.
func NewStudentRecordService(results repository.ResultRepository, attendance repository.AttendanceRepository, enrollments repository.EnrollmentRepository, logger zerolog.Logger) StudentRecordService {
	return &studentRecordService{
		results:     results,
		attendance:  attendance,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "student_record_service").Logger(),
	}
}

func (s *studentRecordService) SemesterGPA(ctx context.Context, userID, semesterID uint) (dto.SemesterGpaResponse, error) {
	response := dto.SemesterGpaResponse{SemesterID: semesterID}
	student, rows, err := s.load(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return response, nil
		}
		return dto.SemesterGpaResponse{}, err
	}

	for _, term := range grading.Trend(rows, student.ID) {
		if term.Term.ID == semesterID {
			response.Semester = term.Term.Name
			response.Credits = term.Credits
		}
	}
	response.GPA = grading.Round(grading.SemesterGPA(rows, student.ID, semesterID), 2)
	return response, nil
}

func (s *studentRecordService) CGPA(ctx context.Context, userID uint) (dto.CgpaResponse, error) {
	response := dto.CgpaResponse{Semesters: []dto.SemesterGpaResponse{}}
	student, rows, err := s.load(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return response, nil
		}
		return dto.CgpaResponse{}, err
	}

	cgpa, credits := grading.CumulativeGPA(rows, student.ID)
	response.CGPA = grading.Round(cgpa, 2)
	response.TotalCredits = credits
	for _, term := range grading.Trend(rows, student.ID) {
		response.Semesters = append(response.Semesters, dto.SemesterGpaResponse{
			SemesterID: term.Term.ID,
			Semester:   term.Term.Name,
			GPA:        grading.Round(term.GPA, 2),
			Credits:    term.Credits,
		})
	}
	return response, nil
}

func (s *studentRecordService) Trend(ctx context.Context, userID uint) (dto.GpaTrendResponse, error) {
	response := dto.GpaTrendResponse{Labels: []string{}, GPA: []float64{}, Points: []dto.TrendPoint{}}
	student, rows, err := s.load(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return response, nil
		}
		return dto.GpaTrendResponse{}, err
	}

	for _, term := range grading.Trend(rows, student.ID) {
		gpa := grading.Round(term.GPA, 2)
		response.Labels = append(response.Labels, termLabel(term.Term))
		response.GPA = append(response.GPA, gpa)
		response.Points = append(response.Points, dto.TrendPoint{
			SemesterID: term.Term.ID,
			Semester:   term.Term.Name,
			Year:       term.Term.Year,
			GPA:        gpa,
			Credits:    term.Credits,
		})
	}
	return response, nil
}

func (s *studentRecordService) RiskStatus(ctx context.Context, userID uint) (dto.RiskStatusResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-results-api/internal/service/student_record")
	ctx, span := tracer.Start(ctx, "students.risk_status")
	span.SetAttributes(attribute.Int64("students.user_id", int64(userID)))
	defer span.End()

	student, rows, err := s.load(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return dto.RiskStatusResponse{Risk: RiskUnknown}, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_failed")
		return dto.RiskStatusResponse{}, err
	}

	records, err := s.attendance.ListByStudent(ctx, student.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "attendance_lookup_failed")
		return dto.RiskStatusResponse{}, err
	}

	assessment := grading.AssessStudent(toAttendance(records), rows, student.ID)
	span.SetAttributes(attribute.String("students.risk", string(assessment.Level)))

	return dto.RiskStatusResponse{
		Risk:          string(assessment.Level),
		AvgAttendance: grading.Round(assessment.AvgAttendance, 2),
		AvgGP:         grading.Round(assessment.AvgGradePoint, 2),
		FailCount:     assessment.FailCount,
	}, nil
}

func (s *studentRecordService) Transcript(ctx context.Context, userID uint) (dto.TranscriptResponse, error) {
	student, rows, err := s.load(ctx, userID)
	if err != nil {
		return dto.TranscriptResponse{}, err
	}

	cgpa, credits := grading.CumulativeGPA(rows, student.ID)
	response := dto.TranscriptResponse{
		StudentID: student.ID,
		Name:      student.Name,
		Email:     student.Email,
		Dept:      student.Dept,
		Batch:     student.Batch,
		Section:   student.Section,
		Rows:      []dto.TranscriptRow{},
		CGPA:      grading.Round(cgpa, 2),
		Credits:   credits,
	}
	for _, row := range grading.Transcript(rows, student.ID) {
		response.Rows = append(response.Rows, dto.TranscriptRow{
			Semester:     row.Term.Name,
			Year:         row.Term.Year,
			CourseCode:   row.CourseCode,
			CourseTitle:  row.CourseTitle,
			Credit:       row.Credit,
			TotalPercent: grading.Round(row.TotalPercent, 2),
			LetterGrade:  string(row.Letter),
			GradePoint:   row.GradePoint,
		})
	}
	return response, nil
}

// load resolves the student behind a user and their published rows.
func (s *studentRecordService) load(ctx context.Context, userID uint) (models.Student, []grading.Graded, error) {
	student, err := s.enrollments.GetStudentByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, nil, ErrStudentNotFound
		}
		return models.Student{}, nil, err
	}

	studentID := student.ID
	results, err := s.results.ListPublished(ctx, repository.ResultFilter{StudentID: &studentID})
	if err != nil {
		s.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to list published results")
		return models.Student{}, nil, err
	}
	return student, toGradedRows(results), nil
}

func termLabel(term grading.Term) string {
	if term.Year == 0 {
		return term.Name
	}
	return fmt.Sprintf("%s %d", term.Name, term.Year)
}
