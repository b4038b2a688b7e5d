package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-results-api/internal/models"
)

// ResultFilter narrows result queries. Nil pointers are ignored.
type ResultFilter struct {
	StudentID  *uint
	SemesterID *uint
	CourseID   *uint
	Search     string
	Limit      int
}

// SubmissionFunc recomputes an enrollment's result from its stored marks and
// current result (nil when none exists). It returns the marks to upsert and
// the result that replaces the stored one.
type SubmissionFunc func(enrollment models.Enrollment, existing []models.Mark, current *models.Result) ([]models.Mark, models.Result, error)

// ResultRepository persists marks and results and serves the published view.
type ResultRepository interface {
	ApplySubmission(ctx context.Context, enrollmentID uint, apply SubmissionFunc) (models.Result, error)
	GetByID(ctx context.Context, id uint) (models.Result, error)
	UpdatePublication(ctx context.Context, id uint, published bool, publishedAt *time.Time) error
	ListDrafts(ctx context.Context, limit int) ([]models.Result, error)
	ListPublished(ctx context.Context, filter ResultFilter) ([]models.Result, error)
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository constructs the result repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

// ApplySubmission runs the whole read-recompute-write inside one transaction
// holding a row lock on the enrollment, so concurrent submissions for the same
// enrollment are serialised.
func (r *resultRepository) ApplySubmission(ctx context.Context, enrollmentID uint, apply SubmissionFunc) (models.Result, error) {
	var saved models.Result
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		if err := lockForUpdate(tx).Preload("Course.Components").First(&enrollment, enrollmentID).Error; err != nil {
			return err
		}

		var marks []models.Mark
		if err := tx.Where("enrollment_id = ?", enrollmentID).Order("component_id ASC").Find(&marks).Error; err != nil {
			return err
		}

		var current *models.Result
		var stored models.Result
		err := tx.Omit(clause.Associations).Where("enrollment_id = ?", enrollmentID).Take(&stored).Error
		switch {
		case err == nil:
			current = &stored
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		upserts, result, err := apply(enrollment, marks, current)
		if err != nil {
			return err
		}

		if len(upserts) > 0 {
			for i := range upserts {
				upserts[i].ID = 0
				upserts[i].EnrollmentID = enrollmentID
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "component_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"obtained_marks", "updated_at"}),
			}).Create(&upserts).Error; err != nil {
				return err
			}
		}

		result.ID = 0
		result.EnrollmentID = enrollmentID
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "enrollment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_percent", "letter_grade", "grade_point", "is_published", "published_at", "computed_at", "updated_at",
			}),
		}).Create(&result).Error; err != nil {
			return err
		}

		return tx.Omit(clause.Associations).Where("enrollment_id = ?", enrollmentID).Take(&saved).Error
	})
	if err != nil {
		return models.Result{}, err
	}
	return saved, nil
}

func (r *resultRepository) GetByID(ctx context.Context, id uint) (models.Result, error) {
	var result models.Result
	if err := withEnrollment(r.db.WithContext(ctx)).First(&result, id).Error; err != nil {
		return models.Result{}, err
	}
	return result, nil
}

func (r *resultRepository) UpdatePublication(ctx context.Context, id uint, published bool, publishedAt *time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_published": published,
			"published_at": publishedAt,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *resultRepository) ListDrafts(ctx context.Context, limit int) ([]models.Result, error) {
	query := joinOffering(r.db.WithContext(ctx)).Where("results.is_published = ?", false)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []models.Result
	err := withEnrollment(query).Order(offeringOrder).Find(&results).Error
	return results, err
}

// ListPublished only ever returns rows whose publication flag is set.
func (r *resultRepository) ListPublished(ctx context.Context, filter ResultFilter) ([]models.Result, error) {
	query := joinOffering(r.db.WithContext(ctx)).Where("results.is_published = ?", true)

	if filter.StudentID != nil {
		query = query.Where("enrollments.student_id = ?", *filter.StudentID)
	}
	if filter.SemesterID != nil {
		query = query.Where("enrollments.semester_id = ?", *filter.SemesterID)
	}
	if filter.CourseID != nil {
		query = query.Where("enrollments.course_id = ?", *filter.CourseID)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("(LOWER(students.name) LIKE ? OR LOWER(students.email) LIKE ?)", like, like)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var results []models.Result
	err := withEnrollment(query).Order(offeringOrder).Find(&results).Error
	return results, err
}

const offeringOrder = "semesters.year ASC, semesters.sequence ASC, semesters.id ASC, courses.code ASC, students.name ASC, results.id ASC"

func joinOffering(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Result{}).
		Select("results.*").
		Joins("JOIN enrollments ON enrollments.id = results.enrollment_id").
		Joins("JOIN students ON students.id = enrollments.student_id").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Joins("JOIN semesters ON semesters.id = enrollments.semester_id")
}

func withEnrollment(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Enrollment").
		Preload("Enrollment.Student").
		Preload("Enrollment.Course").
		Preload("Enrollment.Semester")
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support it.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
