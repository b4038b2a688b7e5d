package grading

// RiskLevel is the tri-level academic risk label.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Thresholds applied by ClassifyRisk.
const (
	HighRiskAttendance   = 75.0
	HighRiskGradePoint   = 2.5
	HighRiskFailCount    = 2
	MediumRiskAttendance = 85.0
	MediumRiskGradePoint = 3.0
)

// ClassifyRisk labels a student from pre-aggregated inputs. High is checked
// first. A student with no published results has an average of 0 and is
// therefore always High.
func ClassifyRisk(avgAttendance, avgGradePoint float64, failCount int) RiskLevel {
	if avgAttendance < HighRiskAttendance || avgGradePoint < HighRiskGradePoint || failCount >= HighRiskFailCount {
		return RiskHigh
	}
	if avgAttendance < MediumRiskAttendance || avgGradePoint < MediumRiskGradePoint || failCount == 1 {
		return RiskMedium
	}
	return RiskLow
}

// RiskAssessment is the classifier's output together with its inputs.
type RiskAssessment struct {
	Level         RiskLevel
	AvgAttendance float64
	AvgGradePoint float64
	FailCount     int
}

// AssessStudent aggregates a student's attendance records and published
// results and classifies them.
func AssessStudent(attendance []Attendance, rows []Graded, studentID uint) RiskAssessment {
	avgAttendance := AveragePercent(attendance)
	avgGP, fails, _ := MeanGradePoint(rows, studentID)
	return RiskAssessment{
		Level:         ClassifyRisk(avgAttendance, avgGP, fails),
		AvgAttendance: avgAttendance,
		AvgGradePoint: avgGP,
		FailCount:     fails,
	}
}
