package grading

import (
	"math"
	"sort"
)

// Term identifies a semester and carries its ordering key.
type Term struct {
	ID       uint
	Name     string
	Year     int
	Sequence int
}

// Before orders terms by year, then by sequence, then by id.
func (t Term) Before(other Term) bool {
	if t.Year != other.Year {
		return t.Year < other.Year
	}
	if t.Sequence != other.Sequence {
		return t.Sequence < other.Sequence
	}
	return t.ID < other.ID
}

// Graded is a result row joined to its enrollment's student, course and term.
type Graded struct {
	ResultID     uint
	EnrollmentID uint
	StudentID    uint
	StudentName  string
	StudentEmail string
	CourseID     uint
	CourseCode   string
	CourseTitle  string
	Credit       float64
	Term         Term
	TotalPercent float64
	Letter       Letter
	GradePoint   float64
	Published    bool
}

// PublishedOnly drops every row that is not published.
func PublishedOnly(rows []Graded) []Graded {
	out := make([]Graded, 0, len(rows))
	for _, row := range rows {
		if row.Published {
			out = append(out, row)
		}
	}
	return out
}

// weighted returns Σ(gp*credit)/Σ(credit) over published rows with positive credit.
func weighted(rows []Graded, keep func(Graded) bool) (gpa, credits float64) {
	points := 0.0
	for _, row := range rows {
		if !row.Published || row.Credit <= 0 || (keep != nil && !keep(row)) {
			continue
		}
		points += row.GradePoint * row.Credit
		credits += row.Credit
	}
	if credits == 0 {
		return 0, 0
	}
	return points / credits, credits
}

// SemesterGPA is the credit-weighted GPA of one student's published results in a term.
func SemesterGPA(rows []Graded, studentID, termID uint) float64 {
	gpa, _ := weighted(rows, func(row Graded) bool {
		return row.StudentID == studentID && row.Term.ID == termID
	})
	return gpa
}

// CumulativeGPA weights every published result of the student by credit across
// all terms at once, never averaging per-term GPAs.
func CumulativeGPA(rows []Graded, studentID uint) (cgpa, totalCredits float64) {
	return weighted(rows, func(row Graded) bool { return row.StudentID == studentID })
}

// TermGPA is one point of a student's GPA trend.
type TermGPA struct {
	Term    Term
	GPA     float64
	Credits float64
}

// Trend returns the student's GPA per term, oldest first. Terms appear only
// when the student has at least one published result in them.
func Trend(rows []Graded, studentID uint) []TermGPA {
	terms := map[uint]Term{}
	for _, row := range rows {
		if row.Published && row.StudentID == studentID {
			terms[row.Term.ID] = row.Term
		}
	}

	ordered := make([]Term, 0, len(terms))
	for _, term := range terms {
		ordered = append(ordered, term)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	trend := make([]TermGPA, 0, len(ordered))
	for _, term := range ordered {
		termID := term.ID
		gpa, credits := weighted(rows, func(row Graded) bool {
			return row.StudentID == studentID && row.Term.ID == termID
		})
		trend = append(trend, TermGPA{Term: term, GPA: gpa, Credits: credits})
	}
	return trend
}

// MeanGradePoint is the unweighted mean grade point and the F count over a
// student's published results. It feeds the risk classifier.
func MeanGradePoint(rows []Graded, studentID uint) (mean float64, fails, count int) {
	sum := 0.0
	for _, row := range rows {
		if !row.Published || row.StudentID != studentID {
			continue
		}
		sum += row.GradePoint
		count++
		if row.Letter.IsFail() {
			fails++
		}
	}
	if count == 0 {
		return 0, 0, 0
	}
	return sum / float64(count), fails, count
}

// Transcript lists a student's published rows ordered by term then course code.
func Transcript(rows []Graded, studentID uint) []Graded {
	out := make([]Graded, 0)
	for _, row := range rows {
		if row.Published && row.StudentID == studentID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Term.ID != out[j].Term.ID {
			return out[i].Term.Before(out[j].Term)
		}
		return out[i].CourseCode < out[j].CourseCode
	})
	return out
}

// Round rounds half away from zero to the given number of decimal places.
// It is meant for response boundaries only.
func Round(value float64, places int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
