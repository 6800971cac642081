package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups posts. Categories are addressed by slug, not ID, on the
// public API; the slug is recomputed whenever the name changes.
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	Posts     []Post         `gorm:"many2many:post_categories" json:"posts,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
