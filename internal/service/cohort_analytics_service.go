package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/grading"
	"github.com/noah-isme/gema-results-api/internal/observability"
	"github.com/noah-isme/gema-results-api/internal/repository"
)

const cohortCacheKey = "results:analytics:cohort"

// CohortAnalyticsService serves read-only views over the published result population.
type CohortAnalyticsService interface {
	AnalyticsInvalidator
	Summary(ctx context.Context) (dto.CohortSummary, error)
	GradeDistribution(ctx context.Context) (dto.GradeDistributionResponse, error)
	CourseDifficulty(ctx context.Context) ([]dto.CourseDifficultyItem, error)
	TopStudents(ctx context.Context) ([]dto.StudentStandingItem, error)
	AtRisk(ctx context.Context) ([]dto.StudentStandingItem, error)
}

type cohortAnalyticsService struct {
	repo     repository.ResultRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCohortAnalyticsService constructs the analytics service. A nil cache disables caching.
func NewCohortAnalyticsService(repo repository.ResultRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) CohortAnalyticsService {
	return &cohortAnalyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "cohort_analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *cohortAnalyticsService) Summary(ctx context.Context) (dto.CohortSummary, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-results-api/internal/service/cohort_analytics")
	ctx, span := tracer.Start(ctx, "analytics.cohort")
	span.SetAttributes(attribute.String("analytics.cache_key", cohortCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cohortCacheKey).Result()
		if err == nil {
			var summary dto.CohortSummary
			if unmarshalErr := json.Unmarshal([]byte(cached), &summary); unmarshalErr == nil {
				summary.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				observability.AnalyticsCache().WithLabelValues("hit").Inc()
				return summary, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
		observability.AnalyticsCache().WithLabelValues("miss").Inc()
	}

	results, err := s.repo.ListPublished(ctx, repository.ResultFilter{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_published_failed")
		return dto.CohortSummary{}, err
	}

	summary := s.buildSummary(grading.PublishedOnly(toGradedRows(results)))
	span.SetAttributes(attribute.Int("analytics.published_results", summary.PublishedResults))

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, cohortCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

func (s *cohortAnalyticsService) GradeDistribution(ctx context.Context) (dto.GradeDistributionResponse, error) {
	summary, err := s.Summary(ctx)
	return summary.GradeDistribution, err
}

func (s *cohortAnalyticsService) CourseDifficulty(ctx context.Context) ([]dto.CourseDifficultyItem, error) {
	summary, err := s.Summary(ctx)
	return summary.CourseDifficulty, err
}

func (s *cohortAnalyticsService) TopStudents(ctx context.Context) ([]dto.StudentStandingItem, error) {
	summary, err := s.Summary(ctx)
	return summary.TopStudents, err
}

func (s *cohortAnalyticsService) AtRisk(ctx context.Context) ([]dto.StudentStandingItem, error) {
	summary, err := s.Summary(ctx)
	return summary.AtRisk, err
}

func (s *cohortAnalyticsService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, cohortCacheKey).Err()
}

func (s *cohortAnalyticsService) buildSummary(rows []grading.Graded) dto.CohortSummary {
	distribution := dto.GradeDistributionResponse{Labels: []string{}, Values: []int{}}
	for _, count := range grading.GradeDistribution(rows) {
		distribution.Labels = append(distribution.Labels, string(count.Letter))
		distribution.Values = append(distribution.Values, count.Count)
	}

	difficulty := make([]dto.CourseDifficultyItem, 0, grading.CourseDifficultyLimit)
	for _, course := range grading.RankCourseDifficulty(rows, grading.CourseDifficultyLimit) {
		difficulty = append(difficulty, dto.CourseDifficultyItem{
			CourseID:   course.CourseID,
			Code:       course.Code,
			Title:      course.Title,
			AvgPercent: grading.Round(course.AvgPercent, 2),
			FailCount:  course.FailCount,
			TotalCount: course.TotalCount,
			FailRate:   grading.Round(course.FailRate*100, 2),
		})
	}

	return dto.CohortSummary{
		GradeDistribution: distribution,
		CourseDifficulty:  difficulty,
		TopStudents:       standingItems(grading.TopPerformers(rows, grading.TopPerformersLimit)),
		AtRisk:            standingItems(grading.AtRisk(rows, grading.AtRiskLimit)),
		PublishedResults:  len(rows),
		GeneratedAt:       s.now().UTC(),
		CacheHit:          false,
	}
}

func standingItems(standings []grading.StudentStanding) []dto.StudentStandingItem {
	items := make([]dto.StudentStandingItem, 0, len(standings))
	for _, standing := range standings {
		items = append(items, dto.StudentStandingItem{
			StudentID:    standing.StudentID,
			Name:         standing.Name,
			Email:        standing.Email,
			AvgGP:        grading.Round(standing.AvgGradePoint, 3),
			CoursesCount: standing.CourseCount,
			FailCount:    standing.FailCount,
		})
	}
	return items
}
