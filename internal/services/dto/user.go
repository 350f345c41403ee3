package dto

import "taskhub_backend/internal/models"

type UpdateUserRequest struct {
	Name *string          `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Role *models.UserRole `json:"role,omitempty" binding:"omitempty,oneof=user admin"`
}

type UserListResponse struct {
	Users  []UserInfo `json:"users"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}
