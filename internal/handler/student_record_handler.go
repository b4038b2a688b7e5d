package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-results-api/internal/service"
	"github.com/noah-isme/gema-results-api/internal/utils"
)

// StudentRecordHandler exposes a student's own published record.
type StudentRecordHandler struct {
	service service.StudentRecordService
	logger  zerolog.Logger
}

// NewStudentRecordHandler constructs the handler.
func NewStudentRecordHandler(service service.StudentRecordService, logger zerolog.Logger) *StudentRecordHandler {
	return &StudentRecordHandler{
		service: service,
		logger:  logger.With().Str("component", "student_record_handler").Logger(),
	}
}

// Register attaches student routes to the router group.
func (h *StudentRecordHandler) Register(router fiber.Router) {
	router.Get("/gpa-trend", h.trend)
	router.Get("/cgpa", h.cgpa)
	router.Get("/risk-status", h.riskStatus)
	router.Get("/transcript", h.transcript)
	router.Get("/semesters/:semesterId/gpa", h.semesterGPA)
}

func (h *StudentRecordHandler) trend(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user context")
	}

	trend, err := h.service.Trend(withRequestContext(c), userID)
	if err != nil {
		return h.fail(c, err, "failed to load gpa trend")
	}
	return utils.SendSuccess(c, "gpa trend", trend)
}

func (h *StudentRecordHandler) cgpa(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user context")
	}

	cgpa, err := h.service.CGPA(withRequestContext(c), userID)
	if err != nil {
		return h.fail(c, err, "failed to load cgpa")
	}
	return utils.SendSuccess(c, "cgpa", cgpa)
}

func (h *StudentRecordHandler) semesterGPA(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user context")
	}
	semesterID, err := parseUintParam(c, "semesterId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	gpa, err := h.service.SemesterGPA(withRequestContext(c), userID, semesterID)
	if err != nil {
		return h.fail(c, err, "failed to load semester gpa")
	}
	return utils.SendSuccess(c, "semester gpa", gpa)
}

func (h *StudentRecordHandler) riskStatus(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user context")
	}

	status, err := h.service.RiskStatus(withRequestContext(c), userID)
	if err != nil {
		return h.fail(c, err, "failed to load risk status")
	}
	return utils.SendSuccess(c, "risk status", status)
}

func (h *StudentRecordHandler) transcript(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user context")
	}

	transcript, err := h.service.Transcript(withRequestContext(c), userID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		return h.fail(c, err, "failed to load transcript")
	}
	return utils.SendSuccess(c, "transcript", transcript)
}

func (h *StudentRecordHandler) fail(c *fiber.Ctx, err error, message string) error {
	requestLogger(h.logger, c).Error().Err(err).Uint("user_id", userIDFromContext(c)).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
