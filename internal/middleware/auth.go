package middleware

import (
	"net/http"
	"strings"

	"taskhub_backend/internal/auth"
	"taskhub_backend/internal/logger"
	"taskhub_backend/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
)

// AuthMiddleware verifies the Bearer access token against both role
// secret pairs and stores the resolved identity on the context.
func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or invalid"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := tokens.VerifyAccessAny(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireRoles rejects authenticated requests whose role is not listed.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role, ok := RoleFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: no role"})
			return
		}
		if !roleSet[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: insufficient permissions"})
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user id, or "" when absent.
func GetUserID(c *gin.Context) string {
	val, exists := c.Get(userIDKey)
	if !exists {
		return ""
	}
	id, ok := val.(string)
	if !ok {
		return ""
	}
	return id
}

// RoleFrom returns the authenticated role from the context.
func RoleFrom(c *gin.Context) (models.UserRole, bool) {
	val, exists := c.Get(roleKey)
	if !exists {
		return "", false
	}
	if role, ok := val.(models.UserRole); ok {
		return role, true
	}
	if roleStr, ok := val.(string); ok {
		return models.UserRole(roleStr), true
	}
	return "", false
}
