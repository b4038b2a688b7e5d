package service

import (
	"github.com/noah-isme/gema-results-api/internal/grading"
	"github.com/noah-isme/gema-results-api/internal/models"
)

func toComponents(components []models.MarkComponent) []grading.Component {
	out := make([]grading.Component, 0, len(components))
	for _, component := range components {
		out = append(out, grading.Component{
			ID:       component.ID,
			Name:     component.Name,
			MaxMarks: component.MaxMarks,
			Weight:   component.Weight,
		})
	}
	return out
}

func toMarkMap(marks []models.Mark) map[uint]float64 {
	out := make(map[uint]float64, len(marks))
	for _, mark := range marks {
		out[mark.ComponentID] = mark.ObtainedMarks
	}
	return out
}

func toGradingResult(result *models.Result) *grading.Result {
	if result == nil {
		return nil
	}
	return &grading.Result{
		ID:           result.ID,
		EnrollmentID: result.EnrollmentID,
		TotalPercent: result.TotalPercent,
		Letter:       grading.Letter(result.LetterGrade),
		GradePoint:   result.GradePoint,
		Published:    result.IsPublished,
		PublishedAt:  result.PublishedAt,
	}
}

// toGraded flattens a result with a preloaded enrollment into the engine's row.
func toGraded(result models.Result) grading.Graded {
	enrollment := result.Enrollment
	return grading.Graded{
		ResultID:     result.ID,
		EnrollmentID: result.EnrollmentID,
		StudentID:    enrollment.StudentID,
		StudentName:  enrollment.Student.Name,
		StudentEmail: enrollment.Student.Email,
		CourseID:     enrollment.CourseID,
		CourseCode:   enrollment.Course.Code,
		CourseTitle:  enrollment.Course.Title,
		Credit:       enrollment.Course.Credit,
		Term: grading.Term{
			ID:       enrollment.SemesterID,
			Name:     enrollment.Semester.Name,
			Year:     enrollment.Semester.Year,
			Sequence: enrollment.Semester.Sequence,
		},
		TotalPercent: result.TotalPercent,
		Letter:       grading.Letter(result.LetterGrade),
		GradePoint:   result.GradePoint,
		Published:    result.IsPublished,
	}
}

func toGradedRows(results []models.Result) []grading.Graded {
	rows := make([]grading.Graded, 0, len(results))
	for _, result := range results {
		rows = append(rows, toGraded(result))
	}
	return rows
}

func toAttendance(records []models.Attendance) []grading.Attendance {
	out := make([]grading.Attendance, 0, len(records))
	for _, record := range records {
		out = append(out, grading.NewAttendance(record.EnrollmentID, record.TotalClasses, record.AttendedClasses))
	}
	return out
}
