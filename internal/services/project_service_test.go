package services

import (
	"context"
	"testing"
	"time"

	"taskhub_backend/internal/appErrors"
	"taskhub_backend/internal/models"
	"taskhub_backend/internal/repositories"
	"taskhub_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projectFixture struct {
	svc      ProjectService
	tasks    TaskService
	userRepo *repositories.MemoryUserRepository
	admin    *models.User
	worker   *models.User
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()

	userRepo := repositories.NewMemoryUserRepository()
	projectRepo := repositories.NewMemoryProjectRepository()
	taskRepo := repositories.NewMemoryTaskRepository()
	commentRepo := repositories.NewMemoryCommentRepository()

	admin := &models.User{Name: "Admin", Email: "admin@example.com", Role: models.UserRoleAdmin, IsVerified: true}
	worker := &models.User{Name: "Worker", Email: "worker@example.com", Role: models.UserRoleUser, IsVerified: true}
	require.NoError(t, userRepo.Create(context.Background(), admin))
	require.NoError(t, userRepo.Create(context.Background(), worker))

	return &projectFixture{
		svc:      NewProjectService(projectRepo, taskRepo, commentRepo, userRepo),
		tasks:    NewTaskService(taskRepo, projectRepo, commentRepo, userRepo),
		userRepo: userRepo,
		admin:    admin,
		worker:   worker,
	}
}

func (f *projectFixture) createProject(t *testing.T) *dto.ProjectResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), f.admin.ID, &dto.CreateProjectRequest{
		Title:              "Website relaunch",
		Description:        "Rebuild the marketing site",
		AcceptanceCriteria: "All pages render",
		Members:            []string{f.worker.ID},
		Deadline:           time.Now().Add(72 * time.Hour),
		AssigneeID:         f.worker.ID,
	})
	require.NoError(t, err)
	return resp
}

func TestProjectCreate(t *testing.T) {
	f := newProjectFixture(t)
	resp := f.createProject(t)

	assert.Equal(t, models.ProjectStatusNew, resp.Status)
	assert.Equal(t, f.admin.ID, resp.CreatedByID)
	require.Len(t, resp.Members, 1)
	assert.Equal(t, f.worker.ID, resp.Members[0].ID)
}

func TestProjectListMine(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	other := &models.User{Name: "Other", Email: "bystander@example.com", Role: models.UserRoleUser, IsVerified: true}
	require.NoError(t, f.userRepo.Create(ctx, other))

	// First project involves the worker as assignee and member, the
	// second only through assignment, the third not at all.
	f.createProject(t)
	_, err := f.svc.Create(ctx, f.admin.ID, &dto.CreateProjectRequest{
		Title: "Assigned only", Description: "d", AcceptanceCriteria: "a",
		Deadline: time.Now().Add(time.Hour), AssigneeID: f.worker.ID,
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.admin.ID, &dto.CreateProjectRequest{
		Title: "Unrelated", Description: "d", AcceptanceCriteria: "a",
		Deadline: time.Now().Add(time.Hour), AssigneeID: other.ID,
	})
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, f.worker.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// The creator sees everything they created.
	created, err := f.svc.ListMine(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Len(t, created, 3)

	// Assignment alone is enough.
	theirs, err := f.svc.ListMine(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "Unrelated", theirs[0].Title)
}

func TestProjectCreateValidatesPeople(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	ghost := "00000000-0000-0000-0000-000000000000"

	_, err := f.svc.Create(ctx, f.admin.ID, &dto.CreateProjectRequest{
		Title: "X", Description: "d", AcceptanceCriteria: "a",
		Deadline: time.Now().Add(time.Hour), AssigneeID: ghost,
	})
	assert.ErrorIs(t, err, appErrors.ErrAssigneeNotFound)

	_, err = f.svc.Create(ctx, f.admin.ID, &dto.CreateProjectRequest{
		Title: "X", Description: "d", AcceptanceCriteria: "a",
		Members:  []string{ghost},
		Deadline: time.Now().Add(time.Hour), AssigneeID: f.worker.ID,
	})
	assert.ErrorIs(t, err, appErrors.ErrMemberNotFound)
}

func TestProjectUpdate(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	project := f.createProject(t)

	newTitle := "Renamed"
	status := models.ProjectStatusExecution
	updated, err := f.svc.Update(ctx, project.ID, &dto.UpdateProjectRequest{
		Title:  &newTitle,
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.ProjectStatusExecution, updated.Status)

	bad := models.ProjectStatus("banana")
	_, err = f.svc.Update(ctx, project.ID, &dto.UpdateProjectRequest{Status: &bad})
	require.Error(t, err)
}

func TestProjectDeleteCascades(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	project := f.createProject(t)

	task, err := f.tasks.Create(ctx, project.ID, f.admin.ID, &dto.CreateTaskRequest{
		Title: "Build header", Description: "d", AcceptanceCriteria: "a",
		Deadline: time.Now().Add(time.Hour), AssigneeID: f.worker.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, project.ID, f.worker.ID, &dto.CommentRequest{Text: "on it"})
	require.NoError(t, err)
	_, err = f.tasks.AddComment(ctx, project.ID, task.ID, f.worker.ID, &dto.CommentRequest{Text: "started"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, project.ID))

	_, err = f.svc.GetByID(ctx, project.ID)
	assert.ErrorIs(t, err, appErrors.ErrProjectNotFound)
	_, err = f.tasks.GetByID(ctx, project.ID, task.ID)
	assert.ErrorIs(t, err, appErrors.ErrTaskNotFound)
}

func TestProjectCommentOwnership(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	project := f.createProject(t)

	comment, err := f.svc.AddComment(ctx, project.ID, f.worker.ID, &dto.CommentRequest{Text: "hello"})
	require.NoError(t, err)

	withComment, err := f.svc.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), withComment.CommentCount)

	other := &models.User{Name: "Other", Email: "other@example.com", Role: models.UserRoleUser}
	require.NoError(t, f.userRepo.Create(ctx, other))

	// A third user can neither delete it, nor can it be deleted under
	// another project id.
	err = f.svc.DeleteComment(ctx, project.ID, comment.ID, other.ID, models.UserRoleUser)
	require.Error(t, err)
	err = f.svc.DeleteComment(ctx, "other-project", comment.ID, f.worker.ID, models.UserRoleUser)
	assert.ErrorIs(t, err, appErrors.ErrCommentMismatch)

	// Admin may delete anyone's comment.
	require.NoError(t, f.svc.DeleteComment(ctx, project.ID, comment.ID, f.admin.ID, models.UserRoleAdmin))

	comments, err := f.svc.ListComments(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestDashboardStats(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	first := f.createProject(t)
	f.createProject(t)
	third := f.createProject(t)

	closed := models.ProjectStatusClose
	_, err := f.svc.Update(ctx, first.ID, &dto.UpdateProjectRequest{Status: &closed})
	require.NoError(t, err)
	blocked := models.ProjectStatusBlock
	_, err = f.svc.Update(ctx, third.ID, &dto.UpdateProjectRequest{Status: &blocked})
	require.NoError(t, err)

	stats, err := f.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProjects)
	assert.Equal(t, int64(1), stats.ActiveProjects)
	assert.Equal(t, int64(1), stats.FinishedProjects)
	assert.Equal(t, int64(1), stats.BlockedProjects)
	assert.Equal(t, int64(3), stats.UpcomingDeadlines)
	assert.Equal(t, int64(1), stats.UniqueMembers)
	assert.NotEmpty(t, stats.ByStatus)
}
