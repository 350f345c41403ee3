package dto

import (
	"time"

	"taskhub_backend/internal/models"
)

type CreateTaskRequest struct {
	Title              string    `json:"title" binding:"required,min=2,max=200"`
	Description        string    `json:"description" binding:"required"`
	AcceptanceCriteria string    `json:"acceptance_criteria" binding:"required"`
	ParentTaskID       *string   `json:"parent_task_id,omitempty" binding:"omitempty,uuid"`
	Members            []string  `json:"members" binding:"omitempty,dive,uuid"`
	Deadline           time.Time `json:"deadline" binding:"required"`
	AssigneeID         string    `json:"assignee_id" binding:"required,uuid"`
}

type UpdateTaskRequest struct {
	Title              *string            `json:"title,omitempty" binding:"omitempty,min=2,max=200"`
	Description        *string            `json:"description,omitempty"`
	AcceptanceCriteria *string            `json:"acceptance_criteria,omitempty"`
	Members            []string           `json:"members,omitempty" binding:"omitempty,dive,uuid"`
	Deadline           *time.Time         `json:"deadline,omitempty"`
	Status             *models.TaskStatus `json:"status,omitempty"`
	AssigneeID         *string            `json:"assignee_id,omitempty" binding:"omitempty,uuid"`
}

type TaskResponse struct {
	ID                 string            `json:"id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	AcceptanceCriteria string            `json:"acceptance_criteria"`
	ProjectID          string            `json:"project_id"`
	ParentTaskID       *string           `json:"parent_task_id,omitempty"`
	Members            []UserInfo        `json:"members"`
	Deadline           time.Time         `json:"deadline"`
	Status             models.TaskStatus `json:"status"`
	AssigneeID         string            `json:"assignee_id"`
	CreatedByID        string            `json:"created_by_id"`
	Subtasks           []TaskResponse    `json:"subtasks,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}
