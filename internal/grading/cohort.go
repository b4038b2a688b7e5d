package grading

import "sort"

// Default list sizes for cohort views.
const (
	CourseDifficultyLimit  = 10
	TopPerformersLimit     = 10
	AtRiskLimit            = 15
	TopPerformerMinCourses = 2
)

// GradeCount is one bucket of the grade distribution.
type GradeCount struct {
	Letter Letter
	Count  int
}

// GradeDistribution counts published results per letter, most frequent first.
// Equal counts keep the grading table order.
func GradeDistribution(rows []Graded) []GradeCount {
	counts := map[Letter]int{}
	for _, row := range rows {
		if row.Published {
			counts[row.Letter]++
		}
	}

	out := make([]GradeCount, 0, len(counts))
	for letter, count := range counts {
		out = append(out, GradeCount{Letter: letter, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if ri, rj := out[i].Letter.rank(), out[j].Letter.rank(); ri != rj {
			return ri < rj
		}
		return out[i].Letter < out[j].Letter
	})
	return out
}

// CourseDifficulty summarises one course's published results.
type CourseDifficulty struct {
	CourseID   uint
	Code       string
	Title      string
	AvgPercent float64
	FailCount  int
	TotalCount int
	FailRate   float64
}

// RankCourseDifficulty orders courses by fail rate descending, then average
// percent ascending, and keeps the first limit entries.
func RankCourseDifficulty(rows []Graded, limit int) []CourseDifficulty {
	type acc struct {
		CourseDifficulty
		percentSum float64
	}
	byCourse := map[uint]*acc{}
	for _, row := range rows {
		if !row.Published {
			continue
		}
		entry, ok := byCourse[row.CourseID]
		if !ok {
			entry = &acc{CourseDifficulty: CourseDifficulty{CourseID: row.CourseID, Code: row.CourseCode, Title: row.CourseTitle}}
			byCourse[row.CourseID] = entry
		}
		entry.TotalCount++
		entry.percentSum += row.TotalPercent
		if row.Letter.IsFail() {
			entry.FailCount++
		}
	}

	out := make([]CourseDifficulty, 0, len(byCourse))
	for _, entry := range byCourse {
		item := entry.CourseDifficulty
		item.AvgPercent = entry.percentSum / float64(item.TotalCount)
		item.FailRate = float64(item.FailCount) / float64(item.TotalCount)
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FailRate != out[j].FailRate {
			return out[i].FailRate > out[j].FailRate
		}
		if out[i].AvgPercent != out[j].AvgPercent {
			return out[i].AvgPercent < out[j].AvgPercent
		}
		return out[i].CourseID < out[j].CourseID
	})
	return truncate(out, limit)
}

// StudentStanding summarises one student's published results.
type StudentStanding struct {
	StudentID     uint
	Name          string
	Email         string
	AvgGradePoint float64
	CourseCount   int
	FailCount     int
}

func standings(rows []Graded) []StudentStanding {
	type acc struct {
		StudentStanding
		pointSum float64
	}
	byStudent := map[uint]*acc{}
	for _, row := range rows {
		if !row.Published {
			continue
		}
		entry, ok := byStudent[row.StudentID]
		if !ok {
			entry = &acc{StudentStanding: StudentStanding{StudentID: row.StudentID, Name: row.StudentName, Email: row.StudentEmail}}
			byStudent[row.StudentID] = entry
		}
		entry.CourseCount++
		entry.pointSum += row.GradePoint
		if row.Letter.IsFail() {
			entry.FailCount++
		}
	}

	out := make([]StudentStanding, 0, len(byStudent))
	for _, entry := range byStudent {
		item := entry.StudentStanding
		item.AvgGradePoint = entry.pointSum / float64(item.CourseCount)
		out = append(out, item)
	}
	return out
}

// TopPerformers ranks students with at least two published courses by average
// grade point descending, then course count descending.
func TopPerformers(rows []Graded, limit int) []StudentStanding {
	all := standings(rows)
	out := make([]StudentStanding, 0, len(all))
	for _, item := range all {
		if item.CourseCount >= TopPerformerMinCourses {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgGradePoint != out[j].AvgGradePoint {
			return out[i].AvgGradePoint > out[j].AvgGradePoint
		}
		if out[i].CourseCount != out[j].CourseCount {
			return out[i].CourseCount > out[j].CourseCount
		}
		return out[i].StudentID < out[j].StudentID
	})
	return truncate(out, limit)
}

// AtRisk lists students whose published results alone meet the high-risk
// grade rules, lowest average grade point first, then most failures.
func AtRisk(rows []Graded, limit int) []StudentStanding {
	all := standings(rows)
	out := make([]StudentStanding, 0, len(all))
	for _, item := range all {
		if item.AvgGradePoint < HighRiskGradePoint || item.FailCount >= HighRiskFailCount {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgGradePoint != out[j].AvgGradePoint {
			return out[i].AvgGradePoint < out[j].AvgGradePoint
		}
		if out[i].FailCount != out[j].FailCount {
			return out[i].FailCount > out[j].FailCount
		}
		return out[i].StudentID < out[j].StudentID
	})
	return truncate(out, limit)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
