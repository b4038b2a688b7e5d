package dto

import "time"

// GradeDistributionResponse is chart-ready: Labels and Values are parallel arrays.
type GradeDistributionResponse struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// CourseDifficultyItem ranks one course. FailRate is a percentage.
type CourseDifficultyItem struct {
	CourseID   uint    `json:"course_id"`
	Code       string  `json:"code"`
	Title      string  `json:"title"`
	AvgPercent float64 `json:"avg_percent"`
	FailCount  int     `json:"fail_count"`
	TotalCount int     `json:"total_count"`
	FailRate   float64 `json:"fail_rate"`
}

// StudentStandingItem ranks one student for top-performer and at-risk lists.
type StudentStandingItem struct {
	StudentID    uint    `json:"student_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	AvgGP        float64 `json:"avg_gp"`
	CoursesCount int     `json:"courses_count"`
	FailCount    int     `json:"f_count"`
}

// CohortSummary bundles every cohort view computed from one published snapshot.
type CohortSummary struct {
	GradeDistribution GradeDistributionResponse `json:"grade_distribution"`
	CourseDifficulty  []CourseDifficultyItem    `json:"course_difficulty"`
	TopStudents       []StudentStandingItem     `json:"top_students"`
	AtRisk            []StudentStandingItem     `json:"at_risk"`
	PublishedResults  int                       `json:"published_results"`
	GeneratedAt       time.Time                 `json:"generated_at"`
	CacheHit          bool                      `json:"cache_hit"`
}

// ExportFilter selects published rows for CSV export.
type ExportFilter struct {
	SemesterID uint
	CourseID   uint
	Query      string
}
