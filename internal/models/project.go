package models

// Project groups tasks for one organization (tenant).
type Project struct {
	BaseModel

	OrganizationID string `gorm:"type:varchar(64);not null;index" json:"organization_id"`
	Name           string `gorm:"type:varchar(255);not null" json:"name"`
	Description    string `gorm:"type:text" json:"description"`
	CreatedByID    string `gorm:"type:varchar(64);not null" json:"created_by_id"`

	Tasks []Task `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}
