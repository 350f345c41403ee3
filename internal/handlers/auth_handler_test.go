package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"taskhub_backend/internal/auth"
	"taskhub_backend/internal/email"
	"taskhub_backend/internal/handlers"
	"taskhub_backend/internal/middleware"
	"taskhub_backend/internal/models"
	"taskhub_backend/internal/otp"
	"taskhub_backend/internal/repositories"
	"taskhub_backend/internal/routes"
	"taskhub_backend/internal/services"
	"taskhub_backend/internal/services/dto"
	"taskhub_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	router *gin.Engine
	mailer *email.MockProvider
	svcs   *services.ServiceContainer
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService(auth.Config{
		UserSecrets:  auth.SecretPair{Access: "ua", Refresh: "ur"},
		AdminSecrets: auth.SecretPair{Access: "aa", Refresh: "ar"},
		AccessTTL:    time.Minute,
		RefreshTTL:   time.Hour,
	})
	require.NoError(t, err)

	mailer := email.NewMockProvider()
	repos := services.Repositories{
		Users:         repositories.NewMemoryUserRepository(),
		RefreshTokens: repositories.NewMemoryRefreshTokenRepository(),
		Projects:      repositories.NewMemoryProjectRepository(),
		Tasks:         repositories.NewMemoryTaskRepository(),
		Comments:      repositories.NewMemoryCommentRepository(),
	}
	svcs := services.NewServiceContainer(repos, otp.NewMemoryStore(), tokens, mailer, 5*time.Minute)

	v := validator.New()
	appHandlers := &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(v, svcs.AuthService, 3600, false),
		UserHandler:    handlers.NewUserHandler(v, svcs.AuthService, svcs.UserService),
		ProjectHandler: handlers.NewProjectHandler(v, svcs.ProjectService),
		TaskHandler:    handlers.NewTaskHandler(v, svcs.TaskService),
	}

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	routes.RegisterRoutes(router, appHandlers, tokens)

	return &apiFixture{router: router, mailer: mailer, svcs: svcs}
}

func (f *apiFixture) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

var apiCodeRe = regexp.MustCompile(`\b(\d{4})\b`)

func (f *apiFixture) lastMailedCode(t *testing.T) string {
	t.Helper()
	msgs := f.mailer.Messages()
	require.NotEmpty(t, msgs)
	match := apiCodeRe.FindStringSubmatch(msgs[len(msgs)-1].Body)
	require.NotNil(t, match)
	return match[1]
}

func (f *apiFixture) signupUser(t *testing.T, name, address string) dto.AuthResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/auth/signup/otp", "", gin.H{"email": address})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"name": name, "email": address, "password": "secret1", "otp": f.lastMailedCode(t),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSignupLoginRefreshFlow(t *testing.T) {
	f := newAPIFixture(t)
	signup := f.signupUser(t, "Alice", "alice@example.com")
	assert.Equal(t, models.UserRoleUser, signup.User.Role)

	w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	// The refresh cookie carries the session hints.
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "refresh_token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	w = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	var rotated dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rotated))
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// Replaying the rotated token is rejected.
	w = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresAuth(t *testing.T) {
	f := newAPIFixture(t)
	signup := f.signupUser(t, "Alice", "alice@example.com")

	w := f.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/auth/me", signup.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info dto.UserInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "alice@example.com", info.Email)
}

func TestValidationErrorsReturn400(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/auth/signup/otp", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"name": "A", "email": "a@b.co", "password": "secret1", "otp": "12",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesEnforceRole(t *testing.T) {
	f := newAPIFixture(t)
	user := f.signupUser(t, "Alice", "alice@example.com")

	// Regular users cannot reach the admin surface.
	w := f.do(t, http.MethodGet, "/api/v1/admin/users", user.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Provision an admin directly and log in through the API.
	_, err := f.svcs.AuthService.DirectSignup(context.Background(), &dto.CreateUserRequest{
		Name: "Root", Email: "root@example.com", Password: "secret1", Role: models.UserRoleAdmin,
	})
	require.NoError(t, err)
	w = f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "root@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var admin dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &admin))

	w = f.do(t, http.MethodGet, "/api/v1/admin/users", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/admin/users", admin.AccessToken, gin.H{
		"name": "Bob", "email": "bob@example.com", "password": "secret1", "role": "user",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestProjectAndTaskEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	user := f.signupUser(t, "Worker", "worker@example.com")

	_, err := f.svcs.AuthService.DirectSignup(context.Background(), &dto.CreateUserRequest{
		Name: "Root", Email: "root@example.com", Password: "secret1", Role: models.UserRoleAdmin,
	})
	require.NoError(t, err)
	w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "root@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var admin dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &admin))

	deadline := time.Now().Add(72 * time.Hour).Format(time.RFC3339)
	w = f.do(t, http.MethodPost, "/api/v1/projects", admin.AccessToken, gin.H{
		"title": "Relaunch", "description": "d", "acceptance_criteria": "a",
		"deadline": deadline, "assignee_id": user.User.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var project dto.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	// Project creation is admin-only.
	w = f.do(t, http.MethodPost, "/api/v1/projects", user.AccessToken, gin.H{
		"title": "Nope", "description": "d", "acceptance_criteria": "a",
		"deadline": deadline, "assignee_id": user.User.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Any authenticated user can read.
	w = f.do(t, http.MethodGet, "/api/v1/projects", user.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	taskPath := fmt.Sprintf("/api/v1/projects/%s/tasks", project.ID)
	w = f.do(t, http.MethodPost, taskPath, admin.AccessToken, gin.H{
		"title": "Build header", "description": "d", "acceptance_criteria": "a",
		"deadline": deadline, "assignee_id": user.User.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var task dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))

	w = f.do(t, http.MethodPatch, taskPath+"/"+task.ID, user.AccessToken, gin.H{"status": "inprogress"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The caller's own projects, scoped by involvement.
	w = f.do(t, http.MethodGet, "/api/v1/my-projects", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []dto.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, project.ID, mine[0].ID)

	// The dashboard is open to any authenticated user.
	w = f.do(t, http.MethodGet, "/api/v1/dashboard", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats dto.DashboardStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalProjects)
}
