package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification severities understood by the client.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notification is a per-user in-app message. UserID and CreatedAt never change
// after insert; IsRead only moves from false to true.
type Notification struct {
	BaseModel

	UserID    string         `gorm:"type:varchar(64);not null;index:idx_notifications_user;index:idx_notifications_user_read,priority:1" json:"user_id"`
	Type      string         `gorm:"type:varchar(64);not null" json:"type"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Message   string         `gorm:"type:text" json:"message"`
	Severity  string         `gorm:"type:varchar(16);not null;default:'info'" json:"severity"`
	ActionURL string         `gorm:"type:text" json:"action_url"`
	Metadata  datatypes.JSON `json:"metadata"`

	IsRead bool       `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}
