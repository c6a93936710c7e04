package models

// Task workflow states.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task is a unit of site work inside a project.
type Task struct {
	BaseModel

	ProjectID   string `gorm:"type:varchar(36);not null;index" json:"project_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Status      string `gorm:"type:varchar(32);not null;default:'todo'" json:"status"`
	AssigneeID  string `gorm:"type:varchar(64);index" json:"assignee_id"`
	CreatedByID string `gorm:"type:varchar(64);not null" json:"created_by_id"`

	Project  *Project      `json:"project,omitempty"`
	Comments []TaskComment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// TaskComment is a discussion entry on a task.
type TaskComment struct {
	BaseModel

	TaskID   string `gorm:"type:varchar(36);not null;index" json:"task_id"`
	AuthorID string `gorm:"type:varchar(64);not null" json:"author_id"`
	Body     string `gorm:"type:text;not null" json:"body"`
}
