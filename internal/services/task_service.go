package services

import (
	"context"
	"errors"

	"taskhub_backend/internal/appErrors"
	"taskhub_backend/internal/models"
	"taskhub_backend/internal/repositories"
	"taskhub_backend/internal/services/dto"
)

type TaskService interface {
	Create(ctx context.Context, projectID, creatorID string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	GetByID(ctx context.Context, projectID, taskID string) (*dto.TaskResponse, error)
	ListByProject(ctx context.Context, projectID string) ([]dto.TaskResponse, error)
	Update(ctx context.Context, projectID, taskID string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, projectID, taskID string) error

	AddComment(ctx context.Context, projectID, taskID, authorID string, req *dto.CommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, projectID, taskID, commentID, requesterID string, requesterRole models.UserRole) error
}

type TaskServiceImpl struct {
	taskRepo    repositories.TaskRepository
	projectRepo repositories.ProjectRepository
	commentRepo repositories.CommentRepository
	userRepo    repositories.UserRepository
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	projectRepo repositories.ProjectRepository,
	commentRepo repositories.CommentRepository,
	userRepo repositories.UserRepository,
) TaskService {
	return &TaskServiceImpl{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
	}
}

func (s *TaskServiceImpl) Create(ctx context.Context, projectID, creatorID string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, req.AssigneeID); err != nil {
		return nil, err
	}
	if err := s.checkMembers(ctx, req.Members); err != nil {
		return nil, err
	}
	if req.ParentTaskID != nil {
		if err := s.checkParent(ctx, projectID, *req.ParentTaskID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:              req.Title,
		Description:        req.Description,
		AcceptanceCriteria: req.AcceptanceCriteria,
		ProjectID:          projectID,
		ParentTaskID:       req.ParentTaskID,
		Deadline:           req.Deadline,
		Status:             models.TaskStatusNew,
		AssigneeID:         req.AssigneeID,
		CreatedByID:        creatorID,
	}
	task.SetMemberIDs(req.Members)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return s.toResponse(ctx, task, false)
}

func (s *TaskServiceImpl) GetByID(ctx context.Context, projectID, taskID string) (*dto.TaskResponse, error) {
	task, err := s.findTask(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, task, true)
}

// ListByProject returns the project's top-level tasks with their
// subtasks nested.
func (s *TaskServiceImpl) ListByProject(ctx context.Context, projectID string) ([]dto.TaskResponse, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.FindByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	children := make(map[string][]models.Task)
	var roots []models.Task
	for _, task := range tasks {
		if task.ParentTaskID != nil {
			children[*task.ParentTaskID] = append(children[*task.ParentTaskID], task)
			continue
		}
		roots = append(roots, task)
	}

	responses := make([]dto.TaskResponse, 0, len(roots))
	for i := range roots {
		resp, err := s.toResponse(ctx, &roots[i], false)
		if err != nil {
			return nil, err
		}
		for _, sub := range children[roots[i].ID] {
			subResp, err := s.toResponse(ctx, &sub, false)
			if err != nil {
				return nil, err
			}
			resp.Subtasks = append(resp.Subtasks, *subResp)
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, projectID, taskID string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.findTask(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AcceptanceCriteria != nil {
		task.AcceptanceCriteria = *req.AcceptanceCriteria
	}
	if req.Members != nil {
		if err := s.checkMembers(ctx, req.Members); err != nil {
			return nil, err
		}
		task.SetMemberIDs(req.Members)
	}
	if req.Deadline != nil {
		task.Deadline = *req.Deadline
	}
	if req.Status != nil {
		if !models.ValidTaskStatus(*req.Status) {
			return nil, appErrors.ValidationError("unknown task status")
		}
		task.Status = *req.Status
	}
	if req.AssigneeID != nil {
		if err := s.checkAssignee(ctx, *req.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = *req.AssigneeID
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return s.toResponse(ctx, task, true)
}

// Delete removes the task, its subtasks and the comments on all of them.
func (s *TaskServiceImpl) Delete(ctx context.Context, projectID, taskID string) error {
	task, err := s.findTask(ctx, projectID, taskID)
	if err != nil {
		return err
	}

	subtasks, err := s.taskRepo.FindSubtasks(ctx, task.ID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	for i := range subtasks {
		if err := s.commentRepo.DeleteByTask(ctx, subtasks[i].ID); err != nil {
			return appErrors.InternalError(err)
		}
	}
	if err := s.commentRepo.DeleteByTask(ctx, task.ID); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *TaskServiceImpl) AddComment(ctx context.Context, projectID, taskID, authorID string, req *dto.CommentRequest) (*dto.CommentResponse, error) {
	task, err := s.findTask(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     req.Text,
		SentByID: authorID,
		TaskID:   &task.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return s.commentResponse(ctx, comment)
}

func (s *TaskServiceImpl) DeleteComment(ctx context.Context, projectID, taskID, commentID, requesterID string, requesterRole models.UserRole) error {
	if _, err := s.findTask(ctx, projectID, taskID); err != nil {
		return err
	}
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return appErrors.ErrCommentNotFound
		}
		return appErrors.InternalError(err)
	}
	if comment.TaskID == nil || *comment.TaskID != taskID {
		return appErrors.ErrCommentMismatch
	}
	if comment.SentByID != requesterID && requesterRole != models.UserRoleAdmin {
		return appErrors.NewForbiddenError("only the author or an admin can delete a comment")
	}
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *TaskServiceImpl) findTask(ctx context.Context, projectID, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, appErrors.ErrTaskNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	if task.ProjectID != projectID {
		return nil, appErrors.ErrTaskNotFound
	}
	return task, nil
}

// checkParent enforces single-level nesting: the parent must belong to
// the same project and must itself be a top-level task.
func (s *TaskServiceImpl) checkParent(ctx context.Context, projectID, parentID string) error {
	parent, err := s.taskRepo.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return appErrors.ErrInvalidParent
		}
		return appErrors.InternalError(err)
	}
	if parent.ProjectID != projectID || parent.ParentTaskID != nil {
		return appErrors.ErrInvalidParent
	}
	return nil
}

func (s *TaskServiceImpl) checkProject(ctx context.Context, projectID string) error {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return appErrors.ErrProjectNotFound
		}
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *TaskServiceImpl) checkAssignee(ctx context.Context, id string) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return appErrors.ErrAssigneeNotFound
		}
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *TaskServiceImpl) checkMembers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if len(found) != len(uniqueIDs(ids)) {
		return appErrors.ErrMemberNotFound
	}
	return nil
}

func (s *TaskServiceImpl) toResponse(ctx context.Context, task *models.Task, withSubtasks bool) (*dto.TaskResponse, error) {
	members, err := s.memberInfos(ctx, task.MemberIDs())
	if err != nil {
		return nil, err
	}
	resp := &dto.TaskResponse{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		AcceptanceCriteria: task.AcceptanceCriteria,
		ProjectID:          task.ProjectID,
		ParentTaskID:       task.ParentTaskID,
		Members:            members,
		Deadline:           task.Deadline,
		Status:             task.Status,
		AssigneeID:         task.AssigneeID,
		CreatedByID:        task.CreatedByID,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
	}
	if withSubtasks && task.ParentTaskID == nil {
		subtasks, err := s.taskRepo.FindSubtasks(ctx, task.ID)
		if err != nil {
			return nil, appErrors.InternalError(err)
		}
		for i := range subtasks {
			sub, err := s.toResponse(ctx, &subtasks[i], false)
			if err != nil {
				return nil, err
			}
			resp.Subtasks = append(resp.Subtasks, *sub)
		}
	}
	return resp, nil
}

func (s *TaskServiceImpl) memberInfos(ctx context.Context, ids []string) ([]dto.UserInfo, error) {
	if len(ids) == 0 {
		return []dto.UserInfo{}, nil
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	infos := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, dto.NewUserInfo(&users[i]))
	}
	return infos, nil
}

func (s *TaskServiceImpl) commentResponse(ctx context.Context, comment *models.Comment) (*dto.CommentResponse, error) {
	author, err := s.userRepo.FindByID(ctx, comment.SentByID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, appErrors.InternalError(err)
	}
	resp := &dto.CommentResponse{
		ID:        comment.ID,
		Text:      comment.Text,
		TaskID:    comment.TaskID,
		CreatedAt: comment.CreatedAt,
	}
	if author != nil {
		resp.SentBy = dto.NewUserInfo(author)
	}
	return resp, nil
}
