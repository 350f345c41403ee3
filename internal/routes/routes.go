package routes

import (
	"taskhub_backend/internal/auth"
	"taskhub_backend/internal/handlers"
	"taskhub_backend/internal/middleware"
	"taskhub_backend/internal/models"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes wires every HTTP route of the application.
func RegisterRoutes(
	router *gin.Engine,
	appHandlers *handlers.AppHandlers,
	tokens *auth.TokenService,
) {
	authMW := middleware.AuthMiddleware(tokens)
	adminOnly := middleware.RequireRoles(models.UserRoleAdmin)

	api := router.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, authMW)

		authed := api.Group("")
		authed.Use(authMW)
		{
			appHandlers.ProjectHandler.RegisterRoutes(authed, adminOnly)
			appHandlers.TaskHandler.RegisterRoutes(authed, adminOnly)

			admin := authed.Group("/admin")
			admin.Use(adminOnly)
			appHandlers.UserHandler.RegisterRoutes(admin)
		}
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
