package models

import (
	"time"

	"gorm.io/datatypes"
)

type Task struct {
	BaseModel
	Title              string         `gorm:"not null" json:"title"`
	Description        string         `gorm:"not null" json:"description"`
	AcceptanceCriteria string         `gorm:"not null" json:"acceptance_criteria"`
	ProjectID          string         `gorm:"not null;index:idx_tasks_project_status" json:"project_id"`
	// ParentTaskID nil means a top-level task. Subtasks are single-level:
	// a subtask can never be a parent itself.
	ParentTaskID *string        `gorm:"index" json:"parent_task_id,omitempty"`
	Members      datatypes.JSON `json:"-"`
	Deadline     time.Time      `gorm:"not null" json:"deadline"`
	Status       TaskStatus     `gorm:"type:varchar(20);not null;default:'new';index:idx_tasks_project_status" json:"status"`
	AssigneeID   string         `gorm:"not null;index" json:"assignee_id"`
	CreatedByID  string         `gorm:"not null;index" json:"created_by_id"`
}

// MemberIDs decodes the stored member list.
func (t *Task) MemberIDs() []string {
	return decodeIDList(t.Members)
}

// SetMemberIDs encodes the member list for storage.
func (t *Task) SetMemberIDs(ids []string) {
	t.Members = encodeIDList(ids)
}
