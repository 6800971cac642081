package models

import (
	"time"

	"gorm.io/gorm"
)

// Media is an uploaded image. Rows are created only as a side effect of a
// successful upload to object storage; PublicID is the object key needed to
// delete the stored bytes later.
type Media struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	URL       string         `gorm:"not null" json:"url"`
	PublicID  string         `gorm:"not null" json:"public_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"posted_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
