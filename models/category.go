package models

import "time"

// Category.Name is always the normalized form of Label.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;uniqueIndex"`
	Label     string `gorm:"size:100;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []Item `gorm:"constraint:OnDelete:CASCADE;"`
}
