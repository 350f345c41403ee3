package handlers

import (
	"taskhub_backend/internal/config"
	"taskhub_backend/internal/services"
	"taskhub_backend/internal/validator"
)

// AppHandlers bundles every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	ProjectHandler *ProjectHandler
	TaskHandler    *TaskHandler
}

func NewAppHandlers(cfg *config.Config, v *validator.Validator, svcs *services.ServiceContainer) *AppHandlers {
	cookieMaxAge := int(cfg.RefreshTTL().Seconds())
	cookieSecure := cfg.Server.Env == "production"

	return &AppHandlers{
		AuthHandler:    NewAuthHandler(v, svcs.AuthService, cookieMaxAge, cookieSecure),
		UserHandler:    NewUserHandler(v, svcs.AuthService, svcs.UserService),
		ProjectHandler: NewProjectHandler(v, svcs.ProjectService),
		TaskHandler:    NewTaskHandler(v, svcs.TaskService),
	}
}
