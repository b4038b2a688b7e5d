package dto

import (
	"time"

	"github.com/noah-isme/gema-results-api/internal/grading"
	"github.com/noah-isme/gema-results-api/internal/models"
)

// MarkItem is one component's raw obtained value.
type MarkItem struct {
	ComponentID   uint    `json:"comp_id" validate:"required"`
	ObtainedMarks float64 `json:"obtained_marks"`
}

// SubmitMarksRequest carries a teacher's mark entry for one enrollment.
type SubmitMarksRequest struct {
	EnrollmentID uint       `json:"enroll_id" validate:"required"`
	CourseID     uint       `json:"course_id"`
	Items        []MarkItem `json:"items" validate:"required,min=1,dive"`
}

// SubmitMarksResponse echoes the recomputed draft result.
type SubmitMarksResponse struct {
	ResultID           uint    `json:"result_id"`
	EnrollmentID       uint    `json:"enroll_id"`
	TotalPercent       float64 `json:"total_percent"`
	LetterGrade        string  `json:"letter_grade"`
	GradePoint         float64 `json:"grade_point"`
	IsPublished        bool    `json:"is_published"`
	PublicationRevoked bool    `json:"publication_revoked"`
	SkippedComponents  []uint  `json:"skipped_components,omitempty"`
}

// AttendanceRequest carries class totals for one enrollment.
type AttendanceRequest struct {
	EnrollmentID    uint `json:"enroll_id" validate:"required"`
	TotalClasses    int  `json:"total_class"`
	AttendedClasses int  `json:"attended_class"`
}

// AttendanceResponse echoes the stored, clamped totals.
type AttendanceResponse struct {
	EnrollmentID      uint    `json:"enroll_id"`
	TotalClasses      int     `json:"total_class"`
	AttendedClasses   int     `json:"attended_class"`
	AttendancePercent float64 `json:"attendance_percent"`
}

// PublishRequest toggles result visibility. Publish defaults to true.
type PublishRequest struct {
	Publish *bool `json:"publish"`
}

// ResultResponse describes a result with its offering context.
type ResultResponse struct {
	ID           uint       `json:"result_id"`
	EnrollmentID uint       `json:"enroll_id"`
	StudentName  string     `json:"student_name"`
	StudentEmail string     `json:"email"`
	CourseCode   string     `json:"code"`
	CourseTitle  string     `json:"title"`
	Semester     string     `json:"semester"`
	Year         int        `json:"year"`
	TotalPercent float64    `json:"total_percent"`
	LetterGrade  string     `json:"letter_grade"`
	GradePoint   float64    `json:"grade_point"`
	IsPublished  bool       `json:"is_published"`
	PublishedAt  *time.Time `json:"published_at"`
}

// NewResultResponse converts a result with a preloaded enrollment.
func NewResultResponse(result models.Result) ResultResponse {
	enrollment := result.Enrollment
	return ResultResponse{
		ID:           result.ID,
		EnrollmentID: result.EnrollmentID,
		StudentName:  enrollment.Student.Name,
		StudentEmail: enrollment.Student.Email,
		CourseCode:   enrollment.Course.Code,
		CourseTitle:  enrollment.Course.Title,
		Semester:     enrollment.Semester.Name,
		Year:         enrollment.Semester.Year,
		TotalPercent: grading.Round(result.TotalPercent, 2),
		LetterGrade:  result.LetterGrade,
		GradePoint:   result.GradePoint,
		IsPublished:  result.IsPublished,
		PublishedAt:  result.PublishedAt,
	}
}

// ComponentInput defines or updates one mark component.
type ComponentInput struct {
	ID       uint    `json:"comp_id"`
	Name     string  `json:"name" validate:"required,max=128"`
	MaxMarks float64 `json:"max_marks" validate:"gt=0"`
	Weight   float64 `json:"weight" validate:"gte=0,lte=100"`
}

// DefineComponentsRequest replaces a course's component set.
type DefineComponentsRequest struct {
	Components []ComponentInput `json:"components" validate:"required,min=1,dive"`
}

// ComponentResponse serializes a mark component.
type ComponentResponse struct {
	ID       uint    `json:"comp_id"`
	Name     string  `json:"name"`
	MaxMarks float64 `json:"max_marks"`
	Weight   float64 `json:"weight"`
}

// ComponentListResponse lists a course's components with their weight total.
type ComponentListResponse struct {
	CourseID    uint                `json:"course_id"`
	Components  []ComponentResponse `json:"components"`
	WeightTotal float64             `json:"weight_total"`
}

// NewComponentListResponse converts course components into a DTO.
func NewComponentListResponse(courseID uint, components []models.MarkComponent) ComponentListResponse {
	items := make([]ComponentResponse, 0, len(components))
	total := 0.0
	for _, component := range components {
		items = append(items, ComponentResponse{
			ID:       component.ID,
			Name:     component.Name,
			MaxMarks: component.MaxMarks,
			Weight:   component.Weight,
		})
		total += component.Weight
	}
	return ComponentListResponse{CourseID: courseID, Components: items, WeightTotal: total}
}
