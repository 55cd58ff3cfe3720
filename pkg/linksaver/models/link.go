package models

import (
	"time"

	"gorm.io/gorm"
)

// Link represents a saved bookmark with fetched metadata and a summary.
// Position is the link's place in the owner's display order: for a user
// with n links the positions are exactly 0..n-1, with no gaps. The field
// is serialized as "order" in the API; the column is named position
// because "order" is an SQL keyword.
type Link struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	URL       string         `gorm:"not null" json:"url"`
	Title     string         `gorm:"not null" json:"title"`
	Favicon   string         `json:"favicon"`
	Summary   string         `json:"summary"`
	Tags      []string       `gorm:"serializer:json" json:"tags"`
	Position  int            `gorm:"not null;index" json:"order"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}
