package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/grading"
	"github.com/noah-isme/gema-results-api/internal/models"
	"github.com/noah-isme/gema-results-api/internal/repository"
)

// ErrCourseNotFound indicates the course or one of its components was not located.
var ErrCourseNotFound = errors.New("course not found")

// ComponentService manages the weighted mark components of a course.
type ComponentService interface {
	List(ctx context.Context, courseID uint) (dto.ComponentListResponse, error)
	Define(ctx context.Context, courseID uint, payload dto.DefineComponentsRequest, actor ActivityActor) (dto.ComponentListResponse, error)
}

type componentService struct {
	repo      repository.ComponentRepository
	validator *validator.Validate
	activity  ActivityRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewComponentService constructs the component service.
func NewComponentService(repo repository.ComponentRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ComponentService {
	return &componentService{
		repo:      repo,
		validator: validator,
		activity:  activity,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "component_service").Logger(),
	}
}

func (s *componentService) List(ctx context.Context, courseID uint) (dto.ComponentListResponse, error) {
	components, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.ComponentListResponse{}, err
	}
	return dto.NewComponentListResponse(courseID, components), nil
}

// Define replaces the course's component set. Weights are stored as given and
// never normalised; marks of dropped components are removed with them.
func (s *componentService) Define(ctx context.Context, courseID uint, payload dto.DefineComponentsRequest, actor ActivityActor) (dto.ComponentListResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ComponentListResponse{}, err
	}

	seen := make(map[string]struct{}, len(payload.Components))
	components := make([]models.MarkComponent, 0, len(payload.Components))
	for _, input := range payload.Components {
		name := strings.TrimSpace(s.sanitizer.Sanitize(input.Name))
		if name == "" {
			return dto.ComponentListResponse{}, grading.ValidationError{Field: "name", Reason: "empty after sanitization"}
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return dto.ComponentListResponse{}, grading.ValidationError{Field: "name", Reason: "duplicate component " + name}
		}
		seen[key] = struct{}{}

		components = append(components, models.MarkComponent{
			ID:       input.ID,
			CourseID: courseID,
			Name:     name,
			MaxMarks: input.MaxMarks,
			Weight:   input.Weight,
		})
	}

	saved, err := s.repo.ReplaceForCourse(ctx, courseID, components)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ComponentListResponse{}, ErrCourseNotFound
		}
		s.logger.Error().Err(err).Uint("course_id", courseID).Msg("failed to replace components")
		return dto.ComponentListResponse{}, err
	}

	response := dto.NewComponentListResponse(courseID, saved)
	if response.WeightTotal != 100 {
		s.logger.Warn().Uint("course_id", courseID).Float64("weight_total", response.WeightTotal).Msg("component weights do not sum to 100")
	}

	recordActivity(ctx, s.activity, s.logger, actor, ActionComponentsDefined, entityCourse, courseID, map[string]interface{}{
		"components":   len(saved),
		"weight_total": response.WeightTotal,
	})

	return response, nil
}
