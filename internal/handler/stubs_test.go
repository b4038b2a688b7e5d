package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/middleware"
	"github.com/noah-isme/gema-results-api/internal/service"
)

type stubResultService struct {
	submitResp  dto.SubmitMarksResponse
	publishResp dto.ResultResponse
	drafts      []dto.ResultResponse
	err         error

	lastSubmit  dto.SubmitMarksRequest
	lastActor   service.ActivityActor
	lastPublish *bool
}

var _ service.ResultService = (*stubResultService)(nil)

func (s *stubResultService) SubmitMarks(_ context.Context, payload dto.SubmitMarksRequest, actor service.ActivityActor) (dto.SubmitMarksResponse, error) {
	s.lastSubmit = payload
	s.lastActor = actor
	return s.submitResp, s.err
}

func (s *stubResultService) SetPublished(_ context.Context, resultID uint, published bool, actor service.ActivityActor) (dto.ResultResponse, error) {
	s.lastPublish = &published
	s.lastActor = actor
	if s.err != nil {
		return dto.ResultResponse{}, s.err
	}
	resp := s.publishResp
	resp.ID = resultID
	resp.IsPublished = published
	return resp, nil
}

func (s *stubResultService) ListDrafts(_ context.Context) ([]dto.ResultResponse, error) {
	return s.drafts, s.err
}

type stubAttendanceService struct {
	resp dto.AttendanceResponse
	err  error
	last dto.AttendanceRequest
}

var _ service.AttendanceService = (*stubAttendanceService)(nil)

func (s *stubAttendanceService) Record(_ context.Context, payload dto.AttendanceRequest, _ service.ActivityActor) (dto.AttendanceResponse, error) {
	s.last = payload
	return s.resp, s.err
}

func (s *stubAttendanceService) Get(_ context.Context, enrollmentID uint) (dto.AttendanceResponse, error) {
	if s.err != nil {
		return dto.AttendanceResponse{}, s.err
	}
	resp := s.resp
	resp.EnrollmentID = enrollmentID
	return resp, nil
}

type stubComponentService struct {
	resp dto.ComponentListResponse
	err  error
}

var _ service.ComponentService = (*stubComponentService)(nil)

func (s *stubComponentService) List(_ context.Context, courseID uint) (dto.ComponentListResponse, error) {
	resp := s.resp
	resp.CourseID = courseID
	return resp, s.err
}

func (s *stubComponentService) Define(_ context.Context, courseID uint, payload dto.DefineComponentsRequest, _ service.ActivityActor) (dto.ComponentListResponse, error) {
	if s.err != nil {
		return dto.ComponentListResponse{}, s.err
	}
	resp := dto.ComponentListResponse{CourseID: courseID}
	for _, input := range payload.Components {
		resp.Components = append(resp.Components, dto.ComponentResponse{Name: input.Name, MaxMarks: input.MaxMarks, Weight: input.Weight})
		resp.WeightTotal += input.Weight
	}
	return resp, nil
}

type stubExportService struct {
	lastFilter dto.ExportFilter
	err        error
}

var _ service.ExportService = (*stubExportService)(nil)

func (s *stubExportService) WriteResultsCSV(_ context.Context, w io.Writer, filter dto.ExportFilter, _ service.ActivityActor) (int, error) {
	s.lastFilter = filter
	if s.err != nil {
		return 0, s.err
	}
	_, err := fmt.Fprint(w, "student_name,letter_grade\nAlice,A+\n")
	return 1, err
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Meta    map[string]interface{} `json:"meta"`
	Details map[string]interface{} `json:"details"`
}

// newApp builds a fiber app whose group carries the given identity.
func newApp(prefix string, userID uint, role string) (*fiber.App, fiber.Router) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	group := app.Group(prefix, func(c *fiber.Ctx) error {
		if userID > 0 {
			c.Locals("user_id", userID)
		}
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	return app, group
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp, payload
}
