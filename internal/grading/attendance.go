package grading

// Attendance holds class totals for one enrollment.
type Attendance struct {
	EnrollmentID    uint
	TotalClasses    int
	AttendedClasses int
}

// NewAttendance clamps both counts to be non-negative and attended to at most total.
func NewAttendance(enrollmentID uint, total, attended int) Attendance {
	if total < 0 {
		total = 0
	}
	if attended < 0 {
		attended = 0
	}
	if attended > total {
		attended = total
	}
	return Attendance{EnrollmentID: enrollmentID, TotalClasses: total, AttendedClasses: attended}
}

// Percent is attended/total*100, or 0 when no classes were held.
func (a Attendance) Percent() float64 {
	if a.TotalClasses <= 0 {
		return 0
	}
	return float64(a.AttendedClasses) / float64(a.TotalClasses) * 100
}

// AveragePercent is the arithmetic mean of per-enrollment percentages. Records
// with no classes held count as 0%. This is deliberately not a pooled ratio of
// attended over held classes.
func AveragePercent(records []Attendance) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, record := range records {
		sum += record.Percent()
	}
	return sum / float64(len(records))
}
