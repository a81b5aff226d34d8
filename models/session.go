package models

import "time"

// Session is the server-side half of a login. Its ID is the jti of the
// signed session token.
type Session struct {
	ID            string    `gorm:"primaryKey;size:36"`
	UserID        uint      `gorm:"not null;index"`
	ProviderToken string    `gorm:"size:2048"`
	ExpiresAt     time.Time `gorm:"not null;index"`
	RevokedAt     *time.Time
	CreatedAt     time.Time
}

func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
