package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-results-api/internal/dto"
	"github.com/noah-isme/gema-results-api/internal/models"
)

type resultFixture struct {
	repo      *memoryResultRepo
	activity  *memoryActivityRepo
	events    *recordingPublisher
	analytics *countingInvalidator
	svc       *resultService
}

func newResultFixture(t *testing.T) resultFixture {
	t.Helper()

	student := models.Student{ID: 1, UserID: 100, Name: "Alice", Email: "alice@example.com"}
	semester := models.Semester{ID: 1, Name: "Spring", Year: 2024, Sequence: 1}
	repo := newMemoryResultRepo(offering(1, student, midtermFinalCourse(1, "CSE101", 3), semester))

	activityRepo := &memoryActivityRepo{}
	events := &recordingPublisher{}
	analytics := &countingInvalidator{}
	svc := NewResultService(repo, validator.New(validator.WithRequiredStructEnabled()), ResultServiceOptions{
		Activity:  NewActivityService(activityRepo, testLogger()),
		Events:    events,
		Analytics: analytics,
	}, testLogger()).(*resultService)

	return resultFixture{repo: repo, activity: activityRepo, events: events, analytics: analytics, svc: svc}
}

var teacher = ActivityActor{ID: 7, Role: "Teacher", CorrelationID: "req-1"}
var admin = ActivityActor{ID: 1, Role: "admin"}

func marks(enrollmentID uint, pairs ...float64) dto.SubmitMarksRequest {
	req := dto.SubmitMarksRequest{EnrollmentID: enrollmentID}
	for i := 0; i+1 < len(pairs); i += 2 {
		req.Items = append(req.Items, dto.MarkItem{ComponentID: uint(pairs[i]), ObtainedMarks: pairs[i+1]})
	}
	return req
}

func TestResultServiceSubmitMarksComputesDraft(t *testing.T) {
	f := newResultFixture(t)

	resp, err := f.svc.SubmitMarks(context.Background(), marks(1, 11, 25, 12, 60), teacher)
	require.NoError(t, err)
	require.Equal(t, 85.0, resp.TotalPercent)
	require.Equal(t, "A+", resp.LetterGrade)
	require.Equal(t, 4.0, resp.GradePoint)
	require.False(t, resp.IsPublished)
	require.False(t, resp.PublicationRevoked)
	require.Empty(t, resp.SkippedComponents)

	require.Equal(t, map[uint]float64{11: 25, 12: 50}, f.repo.marks[1])
	require.Equal(t, []string{ActionMarksSubmitted}, f.activity.actions())
	require.Equal(t, "req-1", f.activity.entries[0].CorrelationID)
	require.Equal(t, "teacher", f.activity.entries[0].ActorRole)
	require.Equal(t, []string{EventResultSubmitted}, f.events.types())
	require.Zero(t, f.analytics.calls)
}

func TestResultServiceResubmitRevokesPublication(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()

	first, err := f.svc.SubmitMarks(ctx, marks(1, 11, 25, 12, 60), teacher)
	require.NoError(t, err)

	published, err := f.svc.SetPublished(ctx, first.ResultID, true, admin)
	require.NoError(t, err)
	require.True(t, published.IsPublished)
	require.NotNil(t, published.PublishedAt)

	again, err := f.svc.SubmitMarks(ctx, marks(1, 11, 10), teacher)
	require.NoError(t, err)
	require.Equal(t, first.ResultID, again.ResultID)
	require.True(t, again.PublicationRevoked)
	require.False(t, again.IsPublished)
	require.InDelta(t, 76.0, again.TotalPercent, 1e-9)
	require.Equal(t, "A", again.LetterGrade)

	stored := f.repo.results[1]
	require.False(t, stored.IsPublished)
	require.Nil(t, stored.PublishedAt)
	require.Equal(t, 2, f.analytics.calls)
	require.Equal(t, []string{EventResultSubmitted, EventResultPublished, EventResultSubmitted}, f.events.types())
}

func TestResultServiceSubmitMarksSkipsUnknownComponents(t *testing.T) {
	f := newResultFixture(t)

	resp, err := f.svc.SubmitMarks(context.Background(), marks(1, 11, 50, 99, 40), teacher)
	require.NoError(t, err)
	require.Equal(t, []uint{99}, resp.SkippedComponents)
	require.Equal(t, 30.0, resp.TotalPercent)
	require.Equal(t, "F", resp.LetterGrade)
	require.NotContains(t, f.repo.marks[1], uint(99))
}

func TestResultServiceSubmitMarksRejectsOnlyUnknownComponents(t *testing.T) {
	f := newResultFixture(t)

	_, err := f.svc.SubmitMarks(context.Background(), marks(1, 98, 10, 99, 40), teacher)
	require.ErrorIs(t, err, ErrUnknownComponent)
	require.Empty(t, f.repo.results)
	require.Empty(t, f.events.events)
}

func TestResultServiceSubmitMarksErrors(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitMarks(ctx, marks(42, 11, 10), teacher)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)

	mismatch := marks(1, 11, 10)
	mismatch.CourseID = 5
	_, err = f.svc.SubmitMarks(ctx, mismatch, teacher)
	require.ErrorIs(t, err, ErrCourseMismatch)

	_, err = f.svc.SubmitMarks(ctx, dto.SubmitMarksRequest{EnrollmentID: 1}, teacher)
	require.Error(t, err)
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestResultServiceSetPublishedTransitions(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()

	first := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return first }

	submitted, err := f.svc.SubmitMarks(ctx, marks(1, 11, 40, 12, 40), teacher)
	require.NoError(t, err)

	published, err := f.svc.SetPublished(ctx, submitted.ResultID, true, admin)
	require.NoError(t, err)
	require.Equal(t, first, *published.PublishedAt)
	require.Equal(t, submitted.TotalPercent, published.TotalPercent)

	f.svc.now = func() time.Time { return first.Add(time.Hour) }
	republished, err := f.svc.SetPublished(ctx, submitted.ResultID, true, admin)
	require.NoError(t, err)
	require.Equal(t, first, *republished.PublishedAt)
	require.Equal(t, 1, f.analytics.calls)

	unpublished, err := f.svc.SetPublished(ctx, submitted.ResultID, false, admin)
	require.NoError(t, err)
	require.False(t, unpublished.IsPublished)
	require.Nil(t, unpublished.PublishedAt)
	require.Equal(t, 2, f.analytics.calls)

	require.Equal(t, []string{
		ActionMarksSubmitted,
		ActionResultPublished,
		ActionResultPublished,
		ActionResultUnpublished,
	}, f.activity.actions())
	require.Equal(t, []string{EventResultSubmitted, EventResultPublished, EventResultUnpublished}, f.events.types())
}

func TestResultServiceSetPublishedNotFound(t *testing.T) {
	f := newResultFixture(t)

	_, err := f.svc.SetPublished(context.Background(), 404, true, admin)
	require.ErrorIs(t, err, ErrResultNotFound)
}

func TestResultServiceListDrafts(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()

	submitted, err := f.svc.SubmitMarks(ctx, marks(1, 11, 50, 12, 50), teacher)
	require.NoError(t, err)

	drafts, err := f.svc.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.Equal(t, "Alice", drafts[0].StudentName)
	require.Equal(t, "CSE101", drafts[0].CourseCode)
	require.Equal(t, 100.0, drafts[0].TotalPercent)

	_, err = f.svc.SetPublished(ctx, submitted.ResultID, true, admin)
	require.NoError(t, err)

	drafts, err = f.svc.ListDrafts(ctx)
	require.NoError(t, err)
	require.Empty(t, drafts)
}
