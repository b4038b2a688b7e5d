package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/handler"
	"github.com/noah-isme/gema-results-api/internal/service"
)

type stubCohortService struct {
	summary dto.CohortSummary
	err     error
}

var _ service.CohortAnalyticsService = (*stubCohortService)(nil)

func (s *stubCohortService) Invalidate(context.Context) error { return nil }

func (s *stubCohortService) Summary(context.Context) (dto.CohortSummary, error) {
	return s.summary, s.err
}

func (s *stubCohortService) GradeDistribution(context.Context) (dto.GradeDistributionResponse, error) {
	return s.summary.GradeDistribution, s.err
}

func (s *stubCohortService) CourseDifficulty(context.Context) ([]dto.CourseDifficultyItem, error) {
	return s.summary.CourseDifficulty, s.err
}

func (s *stubCohortService) TopStudents(context.Context) ([]dto.StudentStandingItem, error) {
	return s.summary.TopStudents, s.err
}

func (s *stubCohortService) AtRisk(context.Context) ([]dto.StudentStandingItem, error) {
	return s.summary.AtRisk, s.err
}

func TestAdminAnalyticsHandler_Views(t *testing.T) {
	svc := &stubCohortService{summary: dto.CohortSummary{
		GradeDistribution: dto.GradeDistributionResponse{Labels: []string{"A+", "F"}, Values: []int{3, 1}},
		CourseDifficulty:  []dto.CourseDifficultyItem{{Code: "MAT101", FailRate: 50}},
		TopStudents:       []dto.StudentStandingItem{{Name: "Alice", AvgGP: 3.875}},
		AtRisk:            []dto.StudentStandingItem{{Name: "Bob", AvgGP: 1.5}},
	}}
	app, group := newApp("/api/v1/admin/analytics", 1, "admin")
	handler.NewAdminAnalyticsHandler(svc, zerolog.Nop()).Register(group)

	resp, payload := doJSON(t, app, http.MethodGet, "/api/v1/admin/analytics/grade-distribution", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var distribution dto.GradeDistributionResponse
	require.NoError(t, json.Unmarshal(payload.Data, &distribution))
	require.Equal(t, []int{3, 1}, distribution.Values)

	resp, payload = doJSON(t, app, http.MethodGet, "/api/v1/admin/analytics/course-difficulty", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var courses []dto.CourseDifficultyItem
	require.NoError(t, json.Unmarshal(payload.Data, &courses))
	require.Equal(t, "MAT101", courses[0].Code)

	for _, path := range []string{"", "/top-students", "/at-risk"} {
		resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/analytics"+path, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func TestAdminAnalyticsHandler_Error(t *testing.T) {
	app, group := newApp("/api/v1/admin/analytics", 1, "admin")
	handler.NewAdminAnalyticsHandler(&stubCohortService{err: errors.New("boom")}, zerolog.Nop()).Register(group)

	resp, payload := doJSON(t, app, http.MethodGet, "/api/v1/admin/analytics/at-risk", "")
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "failed to load analytics", payload.Message)
}
