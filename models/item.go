package models

import "time"

// Item names are unique within a category.
type Item struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:200;not null;uniqueIndex:idx_items_category_name,priority:2"`
	Label       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	CategoryID  uint   `gorm:"not null;index;uniqueIndex:idx_items_category_name,priority:1"`
	UserID      uint   `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
