package handlers

import (
	"net/http"

	"taskhub_backend/internal/services"
	"taskhub_backend/internal/services/dto"
	"taskhub_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	authService services.AuthService
	userService services.UserService
}

func NewUserHandler(v *validator.Validator, authService services.AuthService, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(v),
		authService: authService,
		userService: userService,
	}
}

// RegisterRoutes mounts the admin user-management routes.
func (h *UserHandler) RegisterRoutes(admin *gin.RouterGroup) {
	users := admin.Group("/users")
	{
		users.POST("", h.Create)
		users.GET("", h.List)
		users.GET("/:id", h.Get)
		users.PATCH("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary Provision a user without OTP verification
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User data"
// @Success 201 {object} dto.UserInfo
// @Router /admin/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	info, err := h.authService.DirectSignup(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// List godoc
// @Summary List users
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.UserListResponse
// @Router /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	limit := ParseQueryInt(c, "limit", 50)
	offset := ParseQueryInt(c, "offset", 0)
	resp, err := h.userService.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Get(c *gin.Context) {
	info, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	info, err := h.userService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
