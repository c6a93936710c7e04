package models

import (
	"time"
)

// CacheEntry backs shared counters in the SQL database when Redis is unavailable.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     int64     `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
