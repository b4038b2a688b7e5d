package grading

import "time"

// State is the visibility state of an enrollment's result.
type State string

const (
	StateNone      State = "none"
	StateDraft     State = "draft"
	StatePublished State = "published"
)

// Result is the computed outcome for one enrollment.
type Result struct {
	ID           uint
	EnrollmentID uint
	TotalPercent float64
	Letter       Letter
	GradePoint   float64
	Published    bool
	PublishedAt  *time.Time
}

// State reports where the result sits in the draft/published lifecycle.
func (r *Result) State() State {
	switch {
	case r == nil:
		return StateNone
	case r.Published:
		return StatePublished
	default:
		return StateDraft
	}
}

// Submission is a mark entry for one enrollment against its course's components.
type Submission struct {
	EnrollmentID uint
	Components   []Component
	Existing     map[uint]float64
	Marks        map[uint]float64
}

// Outcome carries everything the storage collaborator must persist for a submission.
type Outcome struct {
	Upserts  map[uint]float64
	Result   Result
	Unknown  []uint
	Previous State
}

// Submit recomputes an enrollment's result from its marks. The returned result
// always replaces the stored one and is always a draft: any earlier publication
// is revoked, including on partial resubmissions.
func Submit(sub Submission, previous *Result) Outcome {
	upserts, merged, unknown := MergeMarks(sub.Components, sub.Existing, sub.Marks)
	total := TotalPercent(sub.Components, merged)
	letter, point := Classify(total)

	result := Result{
		EnrollmentID: sub.EnrollmentID,
		TotalPercent: total,
		Letter:       letter,
		GradePoint:   point,
	}
	if previous != nil {
		result.ID = previous.ID
	}

	return Outcome{
		Upserts:  upserts,
		Result:   result,
		Unknown:  unknown,
		Previous: previous.State(),
	}
}

// SetPublished toggles visibility without touching computed values. The publish
// time is stamped only on a draft to published transition.
func SetPublished(current *Result, published bool, now time.Time) (Result, error) {
	if current == nil {
		return Result{}, ErrNotFound
	}

	next := *current
	switch {
	case published && !current.Published:
		stamp := now
		next.Published = true
		next.PublishedAt = &stamp
	case !published:
		next.Published = false
		next.PublishedAt = nil
	}
	return next, nil
}
