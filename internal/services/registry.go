package services

import (
	"time"

	"taskhub_backend/internal/auth"
	"taskhub_backend/internal/email"
	"taskhub_backend/internal/otp"
	"taskhub_backend/internal/repositories"
)

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	AuthService    AuthService
	UserService    UserService
	ProjectService ProjectService
	TaskService    TaskService
}

// Repositories groups the persistence dependencies the services build on.
type Repositories struct {
	Users         repositories.UserRepository
	RefreshTokens repositories.RefreshTokenRepository
	Projects      repositories.ProjectRepository
	Tasks         repositories.TaskRepository
	Comments      repositories.CommentRepository
}

func NewServiceContainer(
	repos Repositories,
	otpStore otp.Store,
	tokens *auth.TokenService,
	mailer email.Provider,
	otpTTL time.Duration,
) *ServiceContainer {
	return &ServiceContainer{
		AuthService:    NewAuthService(repos.Users, repos.RefreshTokens, otpStore, tokens, mailer, otpTTL),
		UserService:    NewUserService(repos.Users, repos.RefreshTokens),
		ProjectService: NewProjectService(repos.Projects, repos.Tasks, repos.Comments, repos.Users),
		TaskService:    NewTaskService(repos.Tasks, repos.Projects, repos.Comments, repos.Users),
	}
}
