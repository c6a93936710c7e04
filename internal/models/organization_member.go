package models

import "time"

// OrganizationMember records a user seen acting inside an organization with a
// verified token. Task assignment is limited to recorded members.
type OrganizationMember struct {
	OrganizationID string    `gorm:"primaryKey;type:varchar(64)" json:"organization_id"`
	UserID         string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	Role           string    `gorm:"type:varchar(32)" json:"role"`
	LastSeenAt     time.Time `gorm:"index" json:"last_seen_at"`
}
