package models

import "time"

// AccessLog records one handled request on the card endpoints for auditing.
type AccessLog struct {
	ID        uint   `gorm:"primaryKey"`
	RequestID string `gorm:"size:36;index"`
	Principal string `gorm:"size:64;index"`
	Method    string `gorm:"size:16"`
	Path      string `gorm:"size:255"`
	Status    int
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}
