package models

import "time"

// Student is a learner profile linked to an authenticated user account.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Dept      string    `gorm:"size:64" json:"dept"`
	Batch     string    `gorm:"size:32" json:"batch"`
	Section   string    `gorm:"size:16" json:"section"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
