package models

// Comment belongs to either a project or a task, never both.
type Comment struct {
	BaseModel
	Text      string  `gorm:"not null" json:"text"`
	SentByID  string  `gorm:"not null;index" json:"sent_by_id"`
	ProjectID *string `gorm:"index:idx_comments_project_created" json:"project_id,omitempty"`
	TaskID    *string `gorm:"index:idx_comments_task_created" json:"task_id,omitempty"`
}
