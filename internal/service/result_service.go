package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/grading"
	"github.com/noah-isme/gema-results-api/internal/models"
	"github.com/noah-isme/gema-results-api/internal/observability"
	"github.com/noah-isme/gema-results-api/internal/repository"
)

// ErrResultNotFound indicates the result was not located.
var ErrResultNotFound = errors.New("result not found")

// ErrEnrollmentNotFound indicates the enrollment was not located.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// ErrUnknownComponent indicates none of the submitted components belong to the course.
var ErrUnknownComponent = errors.New("no submitted component belongs to the course")

// ErrCourseMismatch indicates the submitted course does not match the enrollment.
var ErrCourseMismatch = errors.New("course does not match enrollment")

// DefaultDraftLimit caps the draft listing when no limit is configured.
const DefaultDraftLimit = 200

// AnalyticsInvalidator drops cached cohort views after the published set changes.
type AnalyticsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ResultService owns the draft and published lifecycle of results.
type ResultService interface {
	SubmitMarks(ctx context.Context, payload dto.SubmitMarksRequest, actor ActivityActor) (dto.SubmitMarksResponse, error)
	SetPublished(ctx context.Context, resultID uint, published bool, actor ActivityActor) (dto.ResultResponse, error)
	ListDrafts(ctx context.Context) ([]dto.ResultResponse, error)
}

type resultService struct {
	repo       repository.ResultRepository
	validator  *validator.Validate
	activity   ActivityRecorder
	events     ResultEventPublisher
	analytics  AnalyticsInvalidator
	draftLimit int
	logger     zerolog.Logger
	now        func() time.Time
}

// ResultServiceOptions carries optional collaborators of the result service.
type ResultServiceOptions struct {
	Activity   ActivityRecorder
	Events     ResultEventPublisher
	Analytics  AnalyticsInvalidator
	DraftLimit int
}

// NewResultService constructs the result lifecycle service.
func NewResultService(repo repository.ResultRepository, validator *validator.Validate, opts ResultServiceOptions, logger zerolog.Logger) ResultService {
	limit := opts.DraftLimit
	if limit <= 0 {
		limit = DefaultDraftLimit
	}
	return &resultService{
		repo:       repo,
		validator:  validator,
		activity:   opts.Activity,
		events:     opts.Events,
		analytics:  opts.Analytics,
		draftLimit: limit,
		logger:     logger.With().Str("component", "result_service").Logger(),
		now:        time.Now,
	}
}

func (s *resultService) SubmitMarks(ctx context.Context, payload dto.SubmitMarksRequest, actor ActivityActor) (dto.SubmitMarksResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-results-api/internal/service/result")
	ctx, span := tracer.Start(ctx, "results.submit_marks")
	span.SetAttributes(
		attribute.Int64("results.enrollment_id", int64(payload.EnrollmentID)),
		attribute.Int64("results.actor_id", int64(actor.ID)),
		attribute.Int("results.items", len(payload.Items)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmitMarksResponse{}, err
	}

	submitted := make(map[uint]float64, len(payload.Items))
	for _, item := range payload.Items {
		submitted[item.ComponentID] = item.ObtainedMarks
	}

	now := s.now().UTC()
	var outcome grading.Outcome
	saved, err := s.repo.ApplySubmission(ctx, payload.EnrollmentID, func(enrollment models.Enrollment, existing []models.Mark, current *models.Result) ([]models.Mark, models.Result, error) {
		if payload.CourseID != 0 && payload.CourseID != enrollment.CourseID {
			return nil, models.Result{}, ErrCourseMismatch
		}

		outcome = grading.Submit(grading.Submission{
			EnrollmentID: enrollment.ID,
			Components:   toComponents(enrollment.Course.Components),
			Existing:     toMarkMap(existing),
			Marks:        submitted,
		}, toGradingResult(current))
		if len(outcome.Upserts) == 0 {
			return nil, models.Result{}, ErrUnknownComponent
		}

		return marksFromUpserts(enrollment.ID, outcome.Upserts), models.Result{
			EnrollmentID: enrollment.ID,
			TotalPercent: outcome.Result.TotalPercent,
			LetterGrade:  string(outcome.Result.Letter),
			GradePoint:   outcome.Result.GradePoint,
			IsPublished:  false,
			PublishedAt:  nil,
			ComputedAt:   now,
		}, nil
	})
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			span.SetStatus(codes.Error, "enrollment_not_found")
			return dto.SubmitMarksResponse{}, ErrEnrollmentNotFound
		case errors.Is(err, ErrUnknownComponent), errors.Is(err, ErrCourseMismatch):
			span.SetStatus(codes.Error, "invalid_components")
			return dto.SubmitMarksResponse{}, err
		default:
			span.SetStatus(codes.Error, "submission_failed")
			s.logger.Error().Err(err).Uint("enroll_id", payload.EnrollmentID).Msg("failed to apply mark submission")
			return dto.SubmitMarksResponse{}, err
		}
	}

	revoked := outcome.Previous == grading.StatePublished
	span.SetAttributes(
		attribute.String("results.letter", saved.LetterGrade),
		attribute.Bool("results.revoked", revoked),
	)
	observability.ResultsComputed().WithLabelValues(saved.LetterGrade).Inc()

	if len(outcome.Unknown) > 0 {
		s.logger.Warn().
			Uint("enroll_id", saved.EnrollmentID).
			Interface("components", outcome.Unknown).
			Msg("skipped components outside the course")
	}
	if revoked {
		observability.PublicationChanges().WithLabelValues("revoked").Inc()
		s.invalidateAnalytics(ctx)
	}

	recordActivity(ctx, s.activity, s.logger, actor, ActionMarksSubmitted, entityEnrollment, saved.EnrollmentID, map[string]interface{}{
		"result_id":     saved.ID,
		"components":    len(outcome.Upserts),
		"skipped":       len(outcome.Unknown),
		"total_percent": grading.Round(saved.TotalPercent, 2),
		"letter_grade":  saved.LetterGrade,
		"revoked":       revoked,
	})
	emitEvent(ctx, s.events, s.logger, ResultEvent{
		Type:          EventResultSubmitted,
		ResultID:      saved.ID,
		EnrollmentID:  saved.EnrollmentID,
		LetterGrade:   saved.LetterGrade,
		GradePoint:    saved.GradePoint,
		IsPublished:   false,
		CorrelationID: actor.CorrelationID,
	})

	return dto.SubmitMarksResponse{
		ResultID:           saved.ID,
		EnrollmentID:       saved.EnrollmentID,
		TotalPercent:       grading.Round(saved.TotalPercent, 2),
		LetterGrade:        saved.LetterGrade,
		GradePoint:         saved.GradePoint,
		IsPublished:        saved.IsPublished,
		PublicationRevoked: revoked,
		SkippedComponents:  outcome.Unknown,
	}, nil
}

func (s *resultService) SetPublished(ctx context.Context, resultID uint, published bool, actor ActivityActor) (dto.ResultResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-results-api/internal/service/result")
	ctx, span := tracer.Start(ctx, "results.set_published")
	span.SetAttributes(
		attribute.Int64("results.result_id", int64(resultID)),
		attribute.Bool("results.publish", published),
		attribute.Int64("results.actor_id", int64(actor.ID)),
	)
	defer span.End()

	stored, err := s.repo.GetByID(ctx, resultID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "result_not_found")
			return dto.ResultResponse{}, ErrResultNotFound
		}
		span.SetStatus(codes.Error, "result_lookup_failed")
		return dto.ResultResponse{}, err
	}

	next, err := grading.SetPublished(toGradingResult(&stored), published, s.now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition_failed")
		return dto.ResultResponse{}, ErrResultNotFound
	}

	changed := next.Published != stored.IsPublished
	if changed {
		if err := s.repo.UpdatePublication(ctx, resultID, next.Published, next.PublishedAt); err != nil {
			span.RecordError(err)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				span.SetStatus(codes.Error, "result_not_found")
				return dto.ResultResponse{}, ErrResultNotFound
			}
			span.SetStatus(codes.Error, "publication_update_failed")
			return dto.ResultResponse{}, err
		}
	}
	stored.IsPublished = next.Published
	stored.PublishedAt = next.PublishedAt

	action, eventType := ActionResultUnpublished, EventResultUnpublished
	if published {
		action, eventType = ActionResultPublished, EventResultPublished
	}

	if changed {
		observability.PublicationChanges().WithLabelValues(eventType).Inc()
		s.invalidateAnalytics(ctx)
		emitEvent(ctx, s.events, s.logger, ResultEvent{
			Type:          eventType,
			ResultID:      stored.ID,
			EnrollmentID:  stored.EnrollmentID,
			LetterGrade:   stored.LetterGrade,
			GradePoint:    stored.GradePoint,
			IsPublished:   stored.IsPublished,
			PublishedAt:   stored.PublishedAt,
			CorrelationID: actor.CorrelationID,
		})
	}
	recordActivity(ctx, s.activity, s.logger, actor, action, entityResult, stored.ID, map[string]interface{}{
		"enroll_id": stored.EnrollmentID,
		"changed":   changed,
	})

	return dto.NewResultResponse(stored), nil
}

func (s *resultService) ListDrafts(ctx context.Context) ([]dto.ResultResponse, error) {
	results, err := s.repo.ListDrafts(ctx, s.draftLimit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ResultResponse, 0, len(results))
	for _, result := range results {
		items = append(items, dto.NewResultResponse(result))
	}
	return items, nil
}

func (s *resultService) invalidateAnalytics(ctx context.Context) {
	if s.analytics == nil {
		return
	}
	if err := s.analytics.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}
}

func marksFromUpserts(enrollmentID uint, upserts map[uint]float64) []models.Mark {
	ids := make([]uint, 0, len(upserts))
	for id := range upserts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	marks := make([]models.Mark, 0, len(ids))
	for _, id := range ids {
		marks = append(marks, models.Mark{
			EnrollmentID:  enrollmentID,
			ComponentID:   id,
			ObtainedMarks: upserts[id],
		})
	}
	return marks
}
