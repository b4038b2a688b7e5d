package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/grading"
	"github.com/noah-isme/gema-results-api/internal/repository"
)

var exportHeader = []string{
	"student_name", "student_email", "dept", "batch", "section",
	"course_code", "course_title", "credit", "semester", "year",
	"total_percent", "letter_grade", "grade_point", "published_at",
}

// ExportService renders published results for offline use.
type ExportService interface {
	WriteResultsCSV(ctx context.Context, w io.Writer, filter dto.ExportFilter, actor ActivityActor) (int, error)
}

type exportService struct {
	repo     repository.ResultRepository
	activity ActivityRecorder
	logger   zerolog.Logger
}

// NewExportService constructs the export service.
func NewExportService(repo repository.ResultRepository, activity ActivityRecorder, logger zerolog.Logger) ExportService {
	return &exportService{
		repo:     repo,
		activity: activity,
		logger:   logger.With().Str("component", "export_service").Logger(),
	}
}

// WriteResultsCSV writes the header plus one line per published result and
// returns the number of data rows written.
func (s *exportService) WriteResultsCSV(ctx context.Context, w io.Writer, filter dto.ExportFilter, actor ActivityActor) (int, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-results-api/internal/service/export")
	ctx, span := tracer.Start(ctx, "results.export_csv")
	defer span.End()

	query := repository.ResultFilter{Search: filter.Query}
	if filter.SemesterID > 0 {
		query.SemesterID = &filter.SemesterID
	}
	if filter.CourseID > 0 {
		query.CourseID = &filter.CourseID
	}

	results, err := s.repo.ListPublished(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_published_failed")
		return 0, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return 0, err
	}
	for _, result := range results {
		enrollment := result.Enrollment
		publishedAt := ""
		if result.PublishedAt != nil {
			publishedAt = result.PublishedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			enrollment.Student.Name,
			enrollment.Student.Email,
			enrollment.Student.Dept,
			enrollment.Student.Batch,
			enrollment.Student.Section,
			enrollment.Course.Code,
			enrollment.Course.Title,
			formatFloat(enrollment.Course.Credit),
			enrollment.Semester.Name,
			strconv.Itoa(enrollment.Semester.Year),
			formatFloat(grading.Round(result.TotalPercent, 2)),
			result.LetterGrade,
			formatFloat(result.GradePoint),
			publishedAt,
		}
		if err := writer.Write(record); err != nil {
			return 0, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		span.RecordError(err)
		return 0, err
	}

	span.SetAttributes(attribute.Int("export.rows", len(results)))
	recordActivity(ctx, s.activity, s.logger, actor, ActionResultsExported, entityResult, 0, map[string]interface{}{
		"rows":        len(results),
		"semester_id": filter.SemesterID,
		"course_id":   filter.CourseID,
		"query":       filter.Query,
	})

	return len(results), nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
