package handler

import (
	"bytes"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/service"
	"github.com/noah-isme/gema-results-api/internal/utils"
)

// AdminResultsHandler exposes result publication, component definition and export endpoints.
type AdminResultsHandler struct {
	results    service.ResultService
	components service.ComponentService
	export     service.ExportService
	logger     zerolog.Logger
}

// NewAdminResultsHandler constructs the handler.
func NewAdminResultsHandler(results service.ResultService, components service.ComponentService, export service.ExportService, logger zerolog.Logger) *AdminResultsHandler {
	return &AdminResultsHandler{
		results:    results,
		components: components,
		export:     export,
		logger:     logger.With().Str("component", "admin_results_handler").Logger(),
	}
}

// Register attaches admin result routes to the router group.
func (h *AdminResultsHandler) Register(router fiber.Router) {
	router.Get("/results/drafts", h.listDrafts)
	router.Patch("/results/:id/publish", h.setPublished)
	router.Put("/courses/:courseId/components", h.defineComponents)
	router.Get("/export/results.csv", h.exportCSV)
}

func (h *AdminResultsHandler) listDrafts(c *fiber.Ctx) error {
	drafts, err := h.results.ListDrafts(withRequestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list drafts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list drafts")
	}

	return utils.OK(c, drafts, "draft results", fiber.Map{"count": len(drafts)})
}

func (h *AdminResultsHandler) setPublished(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.PublishRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	publish := true
	if payload.Publish != nil {
		publish = *payload.Publish
	}

	result, err := h.results.SetPublished(withRequestContext(c), id, publish, activityActorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "result not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("result_id", id).Msg("failed to update publication")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update publication")
	}

	message := "result unpublished"
	if result.IsPublished {
		message = "result published"
	}
	return utils.SendSuccess(c, message, result)
}

func (h *AdminResultsHandler) defineComponents(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.DefineComponentsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.components.Define(withRequestContext(c), courseID, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course or component not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("course_id", courseID).Msg("failed to define components")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to define components")
		}
	}

	return utils.SendSuccess(c, "components saved", response)
}

func (h *AdminResultsHandler) exportCSV(c *fiber.Ctx) error {
	semesterID, err := parseQueryUint(c, "semester_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid semester id")
	}
	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	filter := dto.ExportFilter{
		SemesterID: semesterID,
		CourseID:   courseID,
		Query:      strings.TrimSpace(c.Query("q")),
	}

	var buf bytes.Buffer
	if _, err := h.export.WriteResultsCSV(withRequestContext(c), &buf, filter, activityActorFromContext(c)); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export results")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export results")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="results.csv"`)
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
