package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-results-api/internal/models"
)

// ComponentRepository manages the mark components of a course.
type ComponentRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.MarkComponent, error)
	ReplaceForCourse(ctx context.Context, courseID uint, components []models.MarkComponent) ([]models.MarkComponent, error)
}

type componentRepository struct {
	db *gorm.DB
}

// NewComponentRepository constructs the component repository.
func NewComponentRepository(db *gorm.DB) ComponentRepository {
	return &componentRepository{db: db}
}

func (r *componentRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.MarkComponent, error) {
	var components []models.MarkComponent
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&components).Error
	return components, err
}

// ReplaceForCourse makes components the course's full set. Entries with an id
// update that component, entries without one are created, and components left
// out are deleted together with their marks.
func (r *componentRepository) ReplaceForCourse(ctx context.Context, courseID uint, components []models.MarkComponent) ([]models.MarkComponent, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.Select("id").First(&course, courseID).Error; err != nil {
			return err
		}

		keep := make([]uint, 0, len(components))
		for i := range components {
			components[i].CourseID = courseID
			if components[i].ID == 0 {
				if err := tx.Create(&components[i]).Error; err != nil {
					return err
				}
			} else {
				updated := tx.Model(&models.MarkComponent{}).
					Where("id = ? AND course_id = ?", components[i].ID, courseID).
					Updates(map[string]interface{}{
						"name":      components[i].Name,
						"max_marks": components[i].MaxMarks,
						"weight":    components[i].Weight,
					})
				if updated.Error != nil {
					return updated.Error
				}
				if updated.RowsAffected == 0 {
					return gorm.ErrRecordNotFound
				}
			}
			keep = append(keep, components[i].ID)
		}

		stale := tx.Model(&models.MarkComponent{}).Select("id").Where("course_id = ?", courseID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := tx.Where("component_id IN (?)", stale).Delete(&models.Mark{}).Error; err != nil {
			return err
		}

		removal := tx.Where("course_id = ?", courseID)
		if len(keep) > 0 {
			removal = removal.Where("id NOT IN ?", keep)
		}
		return removal.Delete(&models.MarkComponent{}).Error
	})
	if err != nil {
		return nil, err
	}

	return r.ListByCourse(ctx, courseID)
}
