package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-results-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixture struct {
	student    models.Student
	course     models.Course
	semester   models.Semester
	enrollment models.Enrollment
	components []models.MarkComponent
}

func seedOffering(t *testing.T, db *gorm.DB, studentName, code string, year, seq int) fixture {
	t.Helper()
	var students int64
	require.NoError(t, db.Model(&models.Student{}).Count(&students).Error)

	f := fixture{
		student:  models.Student{UserID: uint(students + 1), Name: studentName, Email: strings.ToLower(studentName) + code + "@example.com"},
		course:   models.Course{Code: code, Title: "Course " + code, Credit: 3},
		semester: models.Semester{Name: fmt.Sprintf("Term %d-%d", year, seq), Year: year, Sequence: seq},
	}
	require.NoError(t, db.Create(&f.student).Error)
	require.NoError(t, db.Where(models.Course{Code: code}).FirstOrCreate(&f.course).Error)
	require.NoError(t, db.Where(models.Semester{Year: year, Sequence: seq}).FirstOrCreate(&f.semester).Error)

	f.enrollment = models.Enrollment{StudentID: f.student.ID, CourseID: f.course.ID, SemesterID: f.semester.ID}
	require.NoError(t, db.Create(&f.enrollment).Error)

	require.NoError(t, db.Where("course_id = ?", f.course.ID).Find(&f.components).Error)
	if len(f.components) == 0 {
		f.components = []models.MarkComponent{
			{CourseID: f.course.ID, Name: "Midterm", MaxMarks: 50, Weight: 30},
			{CourseID: f.course.ID, Name: "Final", MaxMarks: 50, Weight: 70},
		}
		require.NoError(t, db.Create(&f.components).Error)
	}
	return f
}
