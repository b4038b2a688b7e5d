package dto

// TrendPoint is one semester on the GPA chart.
type TrendPoint struct {
	SemesterID uint    `json:"semester_id"`
	Semester   string  `json:"semester"`
	Year       int     `json:"year"`
	GPA        float64 `json:"gpa"`
	Credits    float64 `json:"credits"`
}

// GpaTrendResponse is chart-ready: Labels and GPA are parallel arrays.
type GpaTrendResponse struct {
	Labels []string     `json:"labels"`
	GPA    []float64    `json:"gpa"`
	Points []TrendPoint `json:"points"`
}

// SemesterGpaResponse is the GPA of one semester.
type SemesterGpaResponse struct {
	SemesterID uint    `json:"semester_id"`
	Semester   string  `json:"semester"`
	GPA        float64 `json:"gpa"`
	Credits    float64 `json:"credits"`
}

// CgpaResponse reports cumulative GPA with a per-semester breakdown.
type CgpaResponse struct {
	CGPA         float64               `json:"cgpa"`
	TotalCredits float64               `json:"total_credits"`
	Semesters    []SemesterGpaResponse `json:"semesters"`
}

// RiskStatusResponse reports a student's risk label and its inputs.
type RiskStatusResponse struct {
	Risk          string  `json:"risk"`
	AvgAttendance float64 `json:"avg_attendance"`
	AvgGP         float64 `json:"avg_gp"`
	FailCount     int     `json:"f_count"`
}

// TranscriptRow is one published course on a marksheet.
type TranscriptRow struct {
	Semester     string  `json:"semester"`
	Year         int     `json:"year"`
	CourseCode   string  `json:"code"`
	CourseTitle  string  `json:"title"`
	Credit       float64 `json:"credit"`
	TotalPercent float64 `json:"total_percent"`
	LetterGrade  string  `json:"letter_grade"`
	GradePoint   float64 `json:"grade_point"`
}

// TranscriptResponse is the marksheet payload handed to renderers.
type TranscriptResponse struct {
	StudentID uint            `json:"student_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Dept      string          `json:"dept"`
	Batch     string          `json:"batch"`
	Section   string          `json:"section"`
	Rows      []TranscriptRow `json:"rows"`
	CGPA      float64         `json:"cgpa"`
	Credits   float64         `json:"total_credits"`
}
