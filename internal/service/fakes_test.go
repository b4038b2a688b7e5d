package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-results-api/internal/models"
	"github.com/noah-isme/gema-results-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func ptrUint(v uint) *uint {
	return &v
}

// memoryResultRepo keeps enrollments, marks and results in maps keyed the same
// way as the relational schema.
type memoryResultRepo struct {
	mu          sync.Mutex
	enrollments map[uint]models.Enrollment
	marks       map[uint]map[uint]float64
	results     map[uint]models.Result
	nextID      uint
	listErr     error
}

func newMemoryResultRepo(enrollments ...models.Enrollment) *memoryResultRepo {
	repo := &memoryResultRepo{
		enrollments: map[uint]models.Enrollment{},
		marks:       map[uint]map[uint]float64{},
		results:     map[uint]models.Result{},
	}
	for _, enrollment := range enrollments {
		repo.enrollments[enrollment.ID] = enrollment
	}
	return repo
}

func (m *memoryResultRepo) ApplySubmission(ctx context.Context, enrollmentID uint, apply repository.SubmissionFunc) (models.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	enrollment, ok := m.enrollments[enrollmentID]
	if !ok {
		return models.Result{}, gorm.ErrRecordNotFound
	}

	existing := make([]models.Mark, 0)
	for componentID, value := range m.marks[enrollmentID] {
		existing = append(existing, models.Mark{EnrollmentID: enrollmentID, ComponentID: componentID, ObtainedMarks: value})
	}
	sort.Slice(existing, func(i, j int) bool { return existing[i].ComponentID < existing[j].ComponentID })

	var current *models.Result
	if stored, ok := m.results[enrollmentID]; ok {
		copied := stored
		current = &copied
	}

	upserts, result, err := apply(enrollment, existing, current)
	if err != nil {
		return models.Result{}, err
	}

	if m.marks[enrollmentID] == nil {
		m.marks[enrollmentID] = map[uint]float64{}
	}
	for _, mark := range upserts {
		m.marks[enrollmentID][mark.ComponentID] = mark.ObtainedMarks
	}

	if current != nil {
		result.ID = current.ID
		result.CreatedAt = current.CreatedAt
	} else {
		m.nextID++
		result.ID = m.nextID
		result.CreatedAt = time.Now()
	}
	result.EnrollmentID = enrollmentID
	m.results[enrollmentID] = result
	return result, nil
}

func (m *memoryResultRepo) GetByID(ctx context.Context, id uint) (models.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, result := range m.results {
		if result.ID == id {
			result.Enrollment = m.enrollments[result.EnrollmentID]
			return result, nil
		}
	}
	return models.Result{}, gorm.ErrRecordNotFound
}

func (m *memoryResultRepo) UpdatePublication(ctx context.Context, id uint, published bool, publishedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for enrollmentID, result := range m.results {
		if result.ID == id {
			result.IsPublished = published
			result.PublishedAt = publishedAt
			m.results[enrollmentID] = result
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryResultRepo) ListDrafts(ctx context.Context, limit int) ([]models.Result, error) {
	drafts := m.filter(func(result models.Result) bool { return !result.IsPublished })
	if limit > 0 && len(drafts) > limit {
		drafts = drafts[:limit]
	}
	return drafts, nil
}

func (m *memoryResultRepo) ListPublished(ctx context.Context, filter repository.ResultFilter) ([]models.Result, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	return m.filter(func(result models.Result) bool {
		enrollment := result.Enrollment
		switch {
		case !result.IsPublished:
			return false
		case filter.StudentID != nil && enrollment.StudentID != *filter.StudentID:
			return false
		case filter.SemesterID != nil && enrollment.SemesterID != *filter.SemesterID:
			return false
		case filter.CourseID != nil && enrollment.CourseID != *filter.CourseID:
			return false
		case search != "" &&
			!strings.Contains(strings.ToLower(enrollment.Student.Name), search) &&
			!strings.Contains(strings.ToLower(enrollment.Student.Email), search):
			return false
		}
		return true
	}), nil
}

func (m *memoryResultRepo) filter(keep func(models.Result) bool) []models.Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Result, 0, len(m.results))
	for _, result := range m.results {
		result.Enrollment = m.enrollments[result.EnrollmentID]
		if keep(result) {
			out = append(out, result)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// publishDirect marks a stored result as published without going through the service.
func (m *memoryResultRepo) publishDirect(enrollmentID uint, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := m.results[enrollmentID]
	result.IsPublished = true
	result.PublishedAt = &at
	m.results[enrollmentID] = result
}

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func (m *memoryActivityRepo) actions() []string {
	out := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		out = append(out, entry.Action)
	}
	return out
}

type recordingPublisher struct {
	events []ResultEvent
}

func (r *recordingPublisher) Publish(ctx context.Context, event ResultEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) types() []string {
	out := make([]string, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Type)
	}
	return out
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return nil
}

type memoryAttendanceRepo struct {
	records map[uint]models.Attendance
	// studentOf maps enrollment id to student id for ListByStudent.
	studentOf map[uint]uint
}

func newMemoryAttendanceRepo() *memoryAttendanceRepo {
	return &memoryAttendanceRepo{records: map[uint]models.Attendance{}, studentOf: map[uint]uint{}}
}

func (m *memoryAttendanceRepo) Upsert(ctx context.Context, record *models.Attendance) error {
	m.records[record.EnrollmentID] = *record
	return nil
}

func (m *memoryAttendanceRepo) GetByEnrollment(ctx context.Context, enrollmentID uint) (models.Attendance, error) {
	record, ok := m.records[enrollmentID]
	if !ok {
		return models.Attendance{}, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (m *memoryAttendanceRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Attendance, error) {
	out := make([]models.Attendance, 0)
	for enrollmentID, record := range m.records {
		if m.studentOf[enrollmentID] == studentID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollmentID < out[j].EnrollmentID })
	return out, nil
}

type memoryEnrollmentRepo struct {
	enrollments map[uint]models.Enrollment
	students    map[uint]models.Student
}

func (m *memoryEnrollmentRepo) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	enrollment, ok := m.enrollments[id]
	if !ok {
		return models.Enrollment{}, gorm.ErrRecordNotFound
	}
	return enrollment, nil
}

func (m *memoryEnrollmentRepo) GetStudentByUserID(ctx context.Context, userID uint) (models.Student, error) {
	for _, student := range m.students {
		if student.UserID == userID {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

// offering builds an enrollment with its student, course and semester attached.
func offering(id uint, student models.Student, course models.Course, semester models.Semester) models.Enrollment {
	return models.Enrollment{
		ID:         id,
		StudentID:  student.ID,
		CourseID:   course.ID,
		SemesterID: semester.ID,
		Student:    student,
		Course:     course,
		Semester:   semester,
	}
}

func midtermFinalCourse(id uint, code string, credit float64) models.Course {
	return models.Course{
		ID:     id,
		Code:   code,
		Title:  code + " title",
		Credit: credit,
		Components: []models.MarkComponent{
			{ID: id*10 + 1, CourseID: id, Name: "Midterm", MaxMarks: 50, Weight: 30},
			{ID: id*10 + 2, CourseID: id, Name: "Final", MaxMarks: 50, Weight: 70},
		},
	}
}
