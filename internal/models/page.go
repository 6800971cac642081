package models

import (
	"time"

	"gorm.io/gorm"
)

// Page is a static website page (home, about, contact...). Placeholder is a
// display ordinal used by the frontend to slot pages into the layout.
type Page struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Title           string         `gorm:"not null" json:"title"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	Content         string         `gorm:"type:text" json:"content"`
	FeaturedImageID *uint          `json:"featured_image_id,omitempty"`
	FeaturedImage   *Media         `gorm:"foreignKey:FeaturedImageID" json:"featured_image,omitempty"`
	Placeholder     int            `json:"placeholder"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// PageSummary is the trimmed shape returned by the pages listing endpoint.
type PageSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Placeholder int    `json:"placeholder"`
}
