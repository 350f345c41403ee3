package handlers

import (
	"net/http"

	"taskhub_backend/internal/middleware"
	"taskhub_backend/internal/services"
	"taskhub_backend/internal/services/dto"
	"taskhub_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	*BaseHandler
	taskService services.TaskService
}

func NewTaskHandler(v *validator.Validator, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{
		BaseHandler: NewBaseHandler(v),
		taskService: taskService,
	}
}

// RegisterRoutes mounts task routes under their project.
func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	tasks := rg.Group("/projects/:projectId/tasks")
	{
		tasks.GET("", h.List)
		tasks.GET("/:taskId", h.Get)
		tasks.POST("", adminOnly, h.Create)
		tasks.PATCH("/:taskId", h.Update)
		tasks.DELETE("/:taskId", adminOnly, h.Delete)

		tasks.POST("/:taskId/comments", h.AddComment)
		tasks.DELETE("/:taskId/comments/:commentId", h.DeleteComment)
	}
}

// Create godoc
// @Summary Create a task in a project
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param projectId path string true "Project id"
// @Param request body dto.CreateTaskRequest true "Task data"
// @Success 201 {object} dto.TaskResponse
// @Router /projects/{projectId}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	resp, err := h.taskService.Create(c.Request.Context(), c.Param("projectId"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TaskHandler) Get(c *gin.Context) {
	resp, err := h.taskService.GetByID(c.Request.Context(), c.Param("projectId"), c.Param("taskId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) List(c *gin.Context) {
	resp, err := h.taskService.ListByProject(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	resp, err := h.taskService.Update(c.Request.Context(), c.Param("projectId"), c.Param("taskId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.taskService.Delete(c.Request.Context(), c.Param("projectId"), c.Param("taskId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func (h *TaskHandler) AddComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	resp, err := h.taskService.AddComment(c.Request.Context(),
		c.Param("projectId"), c.Param("taskId"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TaskHandler) DeleteComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	role, _ := middleware.RoleFrom(c)
	err := h.taskService.DeleteComment(c.Request.Context(),
		c.Param("projectId"), c.Param("taskId"), c.Param("commentId"), userID, role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
