package handlers

import (
	"net/http"

	"taskhub_backend/internal/middleware"
	"taskhub_backend/internal/services"
	"taskhub_backend/internal/services/dto"
	"taskhub_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	*BaseHandler
	projectService services.ProjectService
}

func NewProjectHandler(v *validator.Validator, projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler:    NewBaseHandler(v),
		projectService: projectService,
	}
}

// RegisterRoutes mounts project routes. Reads are open to every
// authenticated user, writes require the admin role.
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	projects := rg.Group("/projects")
	{
		projects.GET("", h.List)
		projects.GET("/:projectId", h.Get)
		projects.POST("", adminOnly, h.Create)
		projects.PATCH("/:projectId", adminOnly, h.Update)
		projects.DELETE("/:projectId", adminOnly, h.Delete)

		projects.GET("/:projectId/comments", h.ListComments)
		projects.POST("/:projectId/comments", h.AddComment)
		projects.DELETE("/:projectId/comments/:commentId", h.DeleteComment)
	}
	rg.GET("/my-projects", h.ListMine)
	rg.GET("/dashboard", h.Dashboard)
}

// Create godoc
// @Summary Create a project
// @Tags projects
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateProjectRequest true "Project data"
// @Success 201 {object} dto.ProjectResponse
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateProjectRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	resp, err := h.projectService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	resp, err := h.projectService.GetByID(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) List(c *gin.Context) {
	resp, err := h.projectService.List(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMine godoc
// @Summary List projects the caller is involved in
// @Tags projects
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.ProjectResponse
// @Router /my-projects [get]
func (h *ProjectHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.projectService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	resp, err := h.projectService.Update(c.Request.Context(), c.Param("projectId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projectService.Delete(c.Request.Context(), c.Param("projectId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

func (h *ProjectHandler) AddComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	resp, err := h.projectService.AddComment(c.Request.Context(), c.Param("projectId"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProjectHandler) ListComments(c *gin.Context) {
	resp, err := h.projectService.ListComments(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) DeleteComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	role, _ := middleware.RoleFrom(c)
	err := h.projectService.DeleteComment(c.Request.Context(),
		c.Param("projectId"), c.Param("commentId"), userID, role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// Dashboard godoc
// @Summary Project statistics overview
// @Tags projects
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.DashboardStats
// @Router /dashboard [get]
func (h *ProjectHandler) Dashboard(c *gin.Context) {
	resp, err := h.projectService.DashboardStats(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
