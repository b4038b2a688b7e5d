package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-results-api/internal/service"
	"github.com/noah-isme/gema-results-api/internal/utils"
)

// AdminAnalyticsHandler exposes cohort analytics endpoints for administrators.
type AdminAnalyticsHandler struct {
	service service.CohortAnalyticsService
	logger  zerolog.Logger
}

// NewAdminAnalyticsHandler constructs the handler.
func NewAdminAnalyticsHandler(service service.CohortAnalyticsService, logger zerolog.Logger) *AdminAnalyticsHandler {
	return &AdminAnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_analytics_handler").Logger(),
	}
}

// Register attaches analytics routes to the router group.
func (h *AdminAnalyticsHandler) Register(router fiber.Router) {
	router.Get("", h.summary)
	router.Get("/grade-distribution", h.gradeDistribution)
	router.Get("/course-difficulty", h.courseDifficulty)
	router.Get("/top-students", h.topStudents)
	router.Get("/at-risk", h.atRisk)
}

func (h *AdminAnalyticsHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(withRequestContext(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "analytics summary", summary)
}

func (h *AdminAnalyticsHandler) gradeDistribution(c *fiber.Ctx) error {
	distribution, err := h.service.GradeDistribution(withRequestContext(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "grade distribution", distribution)
}

func (h *AdminAnalyticsHandler) courseDifficulty(c *fiber.Ctx) error {
	courses, err := h.service.CourseDifficulty(withRequestContext(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "course difficulty", courses)
}

func (h *AdminAnalyticsHandler) topStudents(c *fiber.Ctx) error {
	students, err := h.service.TopStudents(withRequestContext(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "top students", students)
}

func (h *AdminAnalyticsHandler) atRisk(c *fiber.Ctx) error {
	students, err := h.service.AtRisk(withRequestContext(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "at-risk students", students)
}

func (h *AdminAnalyticsHandler) fail(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Str("route", c.Path()).Msg("failed to compute analytics")
	return utils.SendError(c, fiber.StatusInternalServerError, "failed to load analytics")
}
