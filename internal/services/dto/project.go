package dto

import (
	"time"

	"taskhub_backend/internal/models"
)

type CreateProjectRequest struct {
	Title              string    `json:"title" binding:"required,min=2,max=200"`
	Description        string    `json:"description" binding:"required"`
	AcceptanceCriteria string    `json:"acceptance_criteria" binding:"required"`
	Members            []string  `json:"members" binding:"omitempty,dive,uuid"`
	Deadline           time.Time `json:"deadline" binding:"required"`
	ClientDetails      string    `json:"client_details"`
	AssigneeID         string    `json:"assignee_id" binding:"required,uuid"`
}

type UpdateProjectRequest struct {
	Title              *string               `json:"title,omitempty" binding:"omitempty,min=2,max=200"`
	Description        *string               `json:"description,omitempty"`
	AcceptanceCriteria *string               `json:"acceptance_criteria,omitempty"`
	Members            []string              `json:"members,omitempty" binding:"omitempty,dive,uuid"`
	Deadline           *time.Time            `json:"deadline,omitempty"`
	ClientDetails      *string               `json:"client_details,omitempty"`
	Status             *models.ProjectStatus `json:"status,omitempty"`
	AssigneeID         *string               `json:"assignee_id,omitempty" binding:"omitempty,uuid"`
}

type ProjectResponse struct {
	ID                 string               `json:"id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	AcceptanceCriteria string               `json:"acceptance_criteria"`
	Members            []UserInfo           `json:"members"`
	Deadline           time.Time            `json:"deadline"`
	ClientDetails      string               `json:"client_details,omitempty"`
	Status             models.ProjectStatus `json:"status"`
	AssigneeID         string               `json:"assignee_id"`
	CreatedByID        string               `json:"created_by_id"`
	CommentCount       int64                `json:"comment_count"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	SentBy    UserInfo  `json:"sent_by"`
	ProjectID *string   `json:"project_id,omitempty"`
	TaskID    *string   `json:"task_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardStats is the dashboard overview of project progress.
type DashboardStats struct {
	TotalProjects     int64         `json:"total_projects"`
	ActiveProjects    int64         `json:"active_projects"`
	FinishedProjects  int64         `json:"finished_projects"`
	BlockedProjects   int64         `json:"blocked_projects"`
	UpcomingDeadlines int64         `json:"upcoming_deadlines"`
	UniqueMembers     int64         `json:"unique_members"`
	ByStatus          []StatusCount `json:"by_status"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}
