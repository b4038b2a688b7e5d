package grading

import "sort"

// Component is a weighted, graded sub-item of a course offering.
type Component struct {
	ID       uint
	Name     string
	MaxMarks float64
	Weight   float64
}

// ClampMark bounds an obtained value to [0, max]. A non-positive max yields 0.
func ClampMark(obtained, max float64) float64 {
	if max <= 0 || obtained <= 0 || obtained != obtained {
		return 0
	}
	if obtained > max {
		return max
	}
	return obtained
}

// Contribution is the share of the 100-point total a component adds for an obtained value.
func (c Component) Contribution(obtained float64) float64 {
	if c.MaxMarks <= 0 || c.Weight <= 0 {
		return 0
	}
	return (ClampMark(obtained, c.MaxMarks) / c.MaxMarks) * c.Weight
}

// TotalPercent sums weighted component contributions. Components missing from
// obtained count as zero. Weights are not normalised, so the total can exceed 100
// when a course is misconfigured.
func TotalPercent(components []Component, obtained map[uint]float64) float64 {
	total := 0.0
	for _, component := range components {
		total += component.Contribution(obtained[component.ID])
	}
	return total
}

// WeightSum reports the configured weight total for a component set.
func WeightSum(components []Component) float64 {
	sum := 0.0
	for _, component := range components {
		sum += component.Weight
	}
	return sum
}

// MergeMarks overlays clamped submitted values on top of previously stored marks.
// It returns the clamped values that must be persisted, the merged view used for
// recomputation, and the ids of submitted components that do not belong to the set.
func MergeMarks(components []Component, existing, submitted map[uint]float64) (upserts, merged map[uint]float64, unknown []uint) {
	index := make(map[uint]Component, len(components))
	for _, component := range components {
		index[component.ID] = component
	}

	merged = make(map[uint]float64, len(components))
	for id, value := range existing {
		if component, ok := index[id]; ok {
			merged[id] = ClampMark(value, component.MaxMarks)
		}
	}

	upserts = make(map[uint]float64, len(submitted))
	for id, value := range submitted {
		component, ok := index[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		clamped := ClampMark(value, component.MaxMarks)
		upserts[id] = clamped
		merged[id] = clamped
	}

	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return upserts, merged, unknown
}
