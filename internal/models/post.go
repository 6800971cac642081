// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a blog post. The slug is derived from the title and acts
// as a secondary unique key for public URLs.
type Post struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"not null" json:"title"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	Content         string         `gorm:"type:text" json:"content"`
	Published       bool           `gorm:"default:true" json:"published"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	User            User           `gorm:"foreignKey:UserID" json:"posted_by"`
	Categories      []Category     `gorm:"many2many:post_categories" json:"categories"`
	FeaturedImageID *uint          `json:"featured_image_id,omitempty"`
	FeaturedImage   *Media         `gorm:"foreignKey:FeaturedImageID" json:"featured_image,omitempty"`
	Comments        []Comment      `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostSummary is the trimmed shape returned by listing endpoints that only
// need link data (title + slug).
type PostSummary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}
