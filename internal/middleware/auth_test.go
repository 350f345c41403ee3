package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskhub_backend/internal/auth"
	"taskhub_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.Config{
		UserSecrets:  auth.SecretPair{Access: "ua", Refresh: "ur"},
		AdminSecrets: auth.SecretPair{Access: "aa", Refresh: "ar"},
		AccessTTL:    time.Minute,
		RefreshTTL:   time.Hour,
	})
	require.NoError(t, err)
	return tokens
}

func newTestRouter(tokens *auth.TokenService, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(tokens)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		role, _ := RoleFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": role})
	})
	r.GET("/protected", handlers...)
	return r
}

func issueFor(t *testing.T, tokens *auth.TokenService, role models.UserRole) *auth.TokenPair {
	t.Helper()
	pair, err := tokens.Issue(&models.User{
		BaseModel: models.BaseModel{ID: "11111111-1111-1111-1111-111111111111"},
		Email:     "a@b.co",
		Role:      role,
	})
	require.NoError(t, err)
	return pair
}

func TestAuthMiddlewareAcceptsBothRoles(t *testing.T) {
	tokens := newTestTokens(t)
	router := newTestRouter(tokens)

	for _, role := range []models.UserRole{models.UserRoleUser, models.UserRoleAdmin} {
		pair := issueFor(t, tokens, role)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "role %s", role)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	tokens := newTestTokens(t)
	router := newTestRouter(tokens)
	pair := issueFor(t, tokens, models.UserRoleUser)

	cases := map[string]string{
		"no header":       "",
		"not bearer":      "Basic abc",
		"garbage":         "Bearer garbage",
		"refresh not acc": "Bearer " + pair.RefreshToken,
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestRequireRoles(t *testing.T) {
	tokens := newTestTokens(t)
	router := newTestRouter(tokens, RequireRoles(models.UserRoleAdmin))

	userPair := issueFor(t, tokens, models.UserRoleUser)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+userPair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminPair := issueFor(t, tokens, models.UserRoleAdmin)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+adminPair.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
