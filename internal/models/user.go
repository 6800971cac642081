// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values assignable to a user. New signups always start as subscribers.
const (
	RoleAdmin      = "admin"
	RoleAuthor     = "author"
	RoleSubscriber = "subscriber"
)

// User represents an account in the CMS.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      string         `gorm:"default:subscriber" json:"role"`
	Website   string         `json:"website"`
	ImageID   *uint          `json:"image_id,omitempty"`
	Image     *Media         `gorm:"foreignKey:ImageID" json:"image,omitempty"`
	ResetCode string         `json:"-"`
	Posts     []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
