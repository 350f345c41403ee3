package handlers

import (
	"net/http"

	"taskhub_backend/internal/appErrors"
	"taskhub_backend/internal/services"
	"taskhub_backend/internal/services/dto"
	"taskhub_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	*BaseHandler
	authService  services.AuthService
	cookieMaxAge int
	cookieSecure bool
}

func NewAuthHandler(v *validator.Validator, authService services.AuthService, cookieMaxAge int, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  NewBaseHandler(v),
		authService:  authService,
		cookieMaxAge: cookieMaxAge,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup/otp", h.SendSignupOTP)
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/password-reset/otp", h.SendPasswordResetOTP)
		auth.POST("/password-reset", h.ResetPassword)

		auth.POST("/logout", authMW, h.Logout)
		auth.GET("/me", authMW, h.Me)
	}
}

// SendSignupOTP godoc
// @Summary Request a signup verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SendOTPRequest true "Email"
// @Success 200 {object} map[string]string
// @Router /auth/signup/otp [post]
func (h *AuthHandler) SendSignupOTP(c *gin.Context) {
	var req dto.SendOTPRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	if err := h.authService.SendSignupOTP(c.Request.Context(), req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// Signup godoc
// @Summary Finish signup with the mailed code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup data"
// @Success 201 {object} dto.AuthResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	resp, err := h.authService.SignupWithOTP(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.setRefreshCookie(c, resp.RefreshToken)
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.setRefreshCookie(c, resp.RefreshToken)
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Rotate the refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest false "Refresh token (falls back to cookie)"
// @Success 200 {object} dto.TokenResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	if token == "" {
		return
	}
	resp, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.setRefreshCookie(c, resp.RefreshToken)
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary End the current session
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.LogoutRequest false "Refresh token (falls back to cookie)"
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	token := h.refreshTokenFrom(c)
	if token == "" {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), userID, token); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// SendPasswordResetOTP godoc
// @Summary Request a password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SendOTPRequest true "Email"
// @Success 200 {object} map[string]string
// @Router /auth/password-reset/otp [post]
func (h *AuthHandler) SendPasswordResetOTP(c *gin.Context) {
	var req dto.SendOTPRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	if err := h.authService.SendPasswordResetOTP(c.Request.Context(), req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reset code sent"})
}

// ResetPassword godoc
// @Summary Reset the password with the mailed code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset data"
// @Success 200 {object} map[string]string
// @Router /auth/password-reset [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Me godoc
// @Summary Current user identity
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserInfo
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	info, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// refreshTokenFrom reads the token from the body first, then from the
// cookie. An empty result means the error response was already written.
func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie != "" {
		return cookie
	}
	h.HandleServiceError(c, appErrors.NewBadRequestError("Missing refresh token"))
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, h.cookieMaxAge, "/api/v1/auth", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/api/v1/auth", "", h.cookieSecure, true)
}
