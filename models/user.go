package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:300;not null;uniqueIndex"`
	DisplayName  string `gorm:"size:100"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	PasswordHash string `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []Item
}
