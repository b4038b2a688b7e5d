package service

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-results-api/internal/models"
)

// newCohortRepo extends the record fixture with Bob, who has a single published C.
func newCohortRepo() *memoryResultRepo {
	repo := newRecordFixture().results
	bob := models.Student{ID: 2, UserID: 200, Name: "Bob", Email: "bob@example.com"}
	repo.enrollments[5] = offering(5, bob, midtermFinalCourse(1, "CSE101", 3), models.Semester{ID: 1, Name: "Spring", Year: 2024, Sequence: 1})
	storeResult(repo, 5, 5, 45, true)
	return repo
}

func TestCohortAnalyticsServiceViews(t *testing.T) {
	svc := NewCohortAnalyticsService(newCohortRepo(), nil, time.Minute, testLogger())
	ctx := context.Background()

	distribution, err := svc.GradeDistribution(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"A+", "A-", "C", "F"}, distribution.Labels)
	require.Equal(t, []int{1, 1, 1, 1}, distribution.Values)

	difficulty, err := svc.CourseDifficulty(ctx)
	require.NoError(t, err)
	require.Len(t, difficulty, 3)
	require.Equal(t, "MAT101", difficulty[0].Code)
	require.Equal(t, 100.0, difficulty[0].FailRate)
	require.Equal(t, "CSE101", difficulty[1].Code)
	require.Equal(t, 65.0, difficulty[1].AvgPercent)
	require.Equal(t, 2, difficulty[1].TotalCount)
	require.Equal(t, "CSE201", difficulty[2].Code)

	top, err := svc.TopStudents(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "Alice", top[0].Name)
	require.Equal(t, 2.833, top[0].AvgGP)
	require.Equal(t, 3, top[0].CoursesCount)

	atRisk, err := svc.AtRisk(ctx)
	require.NoError(t, err)
	require.Len(t, atRisk, 1)
	require.Equal(t, "Bob", atRisk[0].Name)
	require.Equal(t, 2.25, atRisk[0].AvgGP)
}

func TestCohortAnalyticsServiceCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	repo := newCohortRepo()
	svc := NewCohortAnalyticsService(repo, client, time.Minute, testLogger())
	ctx := context.Background()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.False(t, summary.CacheHit)
	require.Equal(t, 4, summary.PublishedResults)
	require.True(t, server.Exists(cohortCacheKey))

	repo.publishDirect(4, time.Now())
	cached, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, 4, cached.PublishedResults)

	require.NoError(t, svc.Invalidate(ctx))
	require.False(t, server.Exists(cohortCacheKey))

	fresh, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Equal(t, 5, fresh.PublishedResults)
}

func TestCohortAnalyticsServiceEmptyPopulation(t *testing.T) {
	svc := NewCohortAnalyticsService(newMemoryResultRepo(), nil, time.Minute, testLogger())

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Empty(t, summary.GradeDistribution.Labels)
	require.Empty(t, summary.CourseDifficulty)
	require.Empty(t, summary.TopStudents)
	require.Empty(t, summary.AtRisk)
}

func TestCohortAnalyticsServicePropagatesRepositoryErrors(t *testing.T) {
	repo := newMemoryResultRepo()
	repo.listErr = errors.New("boom")
	svc := NewCohortAnalyticsService(repo, nil, time.Minute, testLogger())

	_, err := svc.Summary(context.Background())
	require.EqualError(t, err, "boom")
}
