package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/service"
	"github.com/noah-isme/gema-results-api/internal/utils"
)

// TeacherHandler exposes mark, attendance and component endpoints for teachers.
type TeacherHandler struct {
	results    service.ResultService
	attendance service.AttendanceService
	components service.ComponentService
	logger     zerolog.Logger
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(results service.ResultService, attendance service.AttendanceService, components service.ComponentService, logger zerolog.Logger) *TeacherHandler {
	return &TeacherHandler{
		results:    results,
		attendance: attendance,
		components: components,
		logger:     logger.With().Str("component", "teacher_handler").Logger(),
	}
}

// Register attaches teacher routes to the router group.
func (h *TeacherHandler) Register(router fiber.Router) {
	router.Post("/marks", h.submitMarks)
	router.Post("/attendance", h.recordAttendance)
	router.Get("/attendance/:enrollId", h.getAttendance)
	router.Get("/components/:courseId", h.listComponents)
}

func (h *TeacherHandler) submitMarks(c *fiber.Ctx) error {
	var payload dto.SubmitMarksRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.results.SubmitMarks(withRequestContext(c), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEnrollmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
		case errors.Is(err, service.ErrUnknownComponent), errors.Is(err, service.ErrCourseMismatch):
			return utils.Fail(c, fiber.StatusUnprocessableEntity, err.Error(), fiber.Map{"enroll_id": payload.EnrollmentID})
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("enroll_id", payload.EnrollmentID).Msg("failed to submit marks")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit marks")
		}
	}

	return utils.SendSuccess(c, "marks saved", response)
}

func (h *TeacherHandler) recordAttendance(c *fiber.Ctx) error {
	var payload dto.AttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.attendance.Record(withRequestContext(c), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEnrollmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("enroll_id", payload.EnrollmentID).Msg("failed to record attendance")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record attendance")
		}
	}

	return utils.SendSuccess(c, "attendance saved", response)
}

func (h *TeacherHandler) getAttendance(c *fiber.Ctx) error {
	enrollmentID, err := parseUintParam(c, "enrollId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	response, err := h.attendance.Get(withRequestContext(c), enrollmentID)
	if err != nil {
		if errors.Is(err, service.ErrAttendanceNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "attendance not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("enroll_id", enrollmentID).Msg("failed to load attendance")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load attendance")
	}

	return utils.SendSuccess(c, "attendance retrieved", response)
}

func (h *TeacherHandler) listComponents(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	response, err := h.components.List(withRequestContext(c), courseID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("course_id", courseID).Msg("failed to list components")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list components")
	}

	return utils.SendSuccess(c, "components retrieved", response)
}
