package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskhub_backend/internal/models"

	"github.com/google/uuid"
)

// In-memory implementations of the repository contracts, used by the
// service tests so they run without a database.

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = normalizeEmail(email)
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Email = normalizeEmail(user.Email)
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) FindAll(_ context.Context, limit, offset int) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryUserRepository) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []models.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			found = append(found, user)
		}
	}
	return found, nil
}

func (r *MemoryUserRepository) CountByRole(_ context.Context, role models.UserRole) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, user := range r.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

type MemoryRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
}

func NewMemoryRefreshTokenRepository() *MemoryRefreshTokenRepository {
	return &MemoryRefreshTokenRepository{tokens: make(map[string]models.RefreshToken)}
}

func (r *MemoryRefreshTokenRepository) Create(_ context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = *token
	return nil
}

func (r *MemoryRefreshTokenRepository) Exists(_ context.Context, userID, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tokens[token]
	return ok && stored.UserID == userID, nil
}

func (r *MemoryRefreshTokenRepository) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return ErrRefreshTokenNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *MemoryRefreshTokenRepository) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, stored := range r.tokens {
		if stored.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}

func (r *MemoryRefreshTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var pruned int64
	for key, stored := range r.tokens {
		if stored.ExpiresAt.Before(now) {
			delete(r.tokens, key)
			pruned++
		}
	}
	return pruned, nil
}

func (r *MemoryRefreshTokenRepository) CountByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, stored := range r.tokens {
		if stored.UserID == userID {
			count++
		}
	}
	return count, nil
}

type MemoryProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]models.Project
}

func NewMemoryProjectRepository() *MemoryProjectRepository {
	return &MemoryProjectRepository{projects: make(map[string]models.Project)}
}

func (r *MemoryProjectRepository) Create(_ context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	r.projects[project.ID] = *project
	return nil
}

func (r *MemoryProjectRepository) FindByID(_ context.Context, id string) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	project, ok := r.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return &project, nil
}

func (r *MemoryProjectRepository) FindAll(_ context.Context) ([]models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]models.Project, 0, len(r.projects))
	for _, project := range r.projects {
		all = append(all, project)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (r *MemoryProjectRepository) Update(_ context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.ID]; !ok {
		return ErrProjectNotFound
	}
	project.UpdatedAt = time.Now()
	r.projects[project.ID] = *project
	return nil
}

func (r *MemoryProjectRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *MemoryProjectRepository) CountAll(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.projects)), nil
}

func (r *MemoryProjectRepository) CountByStatuses(_ context.Context, statuses ...models.ProjectStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, project := range r.projects {
		if statusIn(project.Status, statuses) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryProjectRepository) CountNotInStatuses(_ context.Context, statuses ...models.ProjectStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, project := range r.projects {
		if !statusIn(project.Status, statuses) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryProjectRepository) CountGroupedByStatus(_ context.Context) ([]StatusCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byStatus := make(map[string]int64)
	for _, project := range r.projects {
		byStatus[string(project.Status)]++
	}
	counts := make([]StatusCount, 0, len(byStatus))
	for status, count := range byStatus {
		counts = append(counts, StatusCount{Status: status, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Status < counts[j].Status })
	return counts, nil
}

func statusIn(status models.ProjectStatus, statuses []models.ProjectStatus) bool {
	for _, s := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{tasks: make(map[string]models.Task)}
}

func (r *MemoryTaskRepository) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.tasks[task.ID] = *task
	return nil
}

func (r *MemoryTaskRepository) FindByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}

func (r *MemoryTaskRepository) FindByProject(_ context.Context, projectID string) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []models.Task
	for _, task := range r.tasks {
		if task.ProjectID == projectID {
			found = append(found, task)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	return found, nil
}

func (r *MemoryTaskRepository) FindSubtasks(_ context.Context, parentTaskID string) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []models.Task
	for _, task := range r.tasks {
		if task.ParentTaskID != nil && *task.ParentTaskID == parentTaskID {
			found = append(found, task)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	return found, nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = *task
	return nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	for key, task := range r.tasks {
		if task.ParentTaskID != nil && *task.ParentTaskID == id {
			delete(r.tasks, key)
		}
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryTaskRepository) DeleteByProject(_ context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, task := range r.tasks {
		if task.ProjectID == projectID {
			delete(r.tasks, key)
		}
	}
	return nil
}

type MemoryCommentRepository struct {
	mu       sync.RWMutex
	comments map[string]models.Comment
}

func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{comments: make(map[string]models.Comment)}
}

func (r *MemoryCommentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = time.Now()
	r.comments[comment.ID] = *comment
	return nil
}

func (r *MemoryCommentRepository) FindByID(_ context.Context, id string) (*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comment, ok := r.comments[id]
	if !ok {
		return nil, ErrCommentNotFound
	}
	return &comment, nil
}

func (r *MemoryCommentRepository) FindByProject(_ context.Context, projectID string) ([]models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []models.Comment
	for _, comment := range r.comments {
		if comment.ProjectID != nil && *comment.ProjectID == projectID {
			found = append(found, comment)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	return found, nil
}

func (r *MemoryCommentRepository) FindByTask(_ context.Context, taskID string) ([]models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []models.Comment
	for _, comment := range r.comments {
		if comment.TaskID != nil && *comment.TaskID == taskID {
			found = append(found, comment)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	return found, nil
}

func (r *MemoryCommentRepository) CountByProject(_ context.Context, projectID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, comment := range r.comments {
		if comment.ProjectID != nil && *comment.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryCommentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *MemoryCommentRepository) DeleteByProject(_ context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, comment := range r.comments {
		if comment.ProjectID != nil && *comment.ProjectID == projectID {
			delete(r.comments, key)
		}
	}
	return nil
}

func (r *MemoryCommentRepository) DeleteByTask(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, comment := range r.comments {
		if comment.TaskID != nil && *comment.TaskID == taskID {
			delete(r.comments, key)
		}
	}
	return nil
}
