package services

import (
	"context"
	"errors"
	"time"

	"taskhub_backend/internal/appErrors"
	"taskhub_backend/internal/models"
	"taskhub_backend/internal/repositories"
	"taskhub_backend/internal/services/dto"
)

type ProjectService interface {
	Create(ctx context.Context, creatorID string, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error)
	List(ctx context.Context) ([]dto.ProjectResponse, error)
	ListMine(ctx context.Context, userID string) ([]dto.ProjectResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, id string) error

	AddComment(ctx context.Context, projectID, authorID string, req *dto.CommentRequest) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, projectID string) ([]dto.CommentResponse, error)
	DeleteComment(ctx context.Context, projectID, commentID, requesterID string, requesterRole models.UserRole) error

	DashboardStats(ctx context.Context) (*dto.DashboardStats, error)
}

type ProjectServiceImpl struct {
	projectRepo repositories.ProjectRepository
	taskRepo    repositories.TaskRepository
	commentRepo repositories.CommentRepository
	userRepo    repositories.UserRepository
}

func NewProjectService(
	projectRepo repositories.ProjectRepository,
	taskRepo repositories.TaskRepository,
	commentRepo repositories.CommentRepository,
	userRepo repositories.UserRepository,
) ProjectService {
	return &ProjectServiceImpl{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
	}
}

func (s *ProjectServiceImpl) Create(ctx context.Context, creatorID string, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if err := s.checkAssignee(ctx, req.AssigneeID); err != nil {
		return nil, err
	}
	if err := s.checkMembers(ctx, req.Members); err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:              req.Title,
		Description:        req.Description,
		AcceptanceCriteria: req.AcceptanceCriteria,
		Deadline:           req.Deadline,
		ClientDetails:      req.ClientDetails,
		Status:             models.ProjectStatusNew,
		AssigneeID:         req.AssigneeID,
		CreatedByID:        creatorID,
	}
	project.SetMemberIDs(req.Members)

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return s.toResponse(ctx, project)
}

func (s *ProjectServiceImpl) GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	project, err := s.findProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, project)
}

func (s *ProjectServiceImpl) List(ctx context.Context) ([]dto.ProjectResponse, error) {
	projects, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	responses := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		resp, err := s.toResponse(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// ListMine returns the projects the user is involved in, as assignee,
// member or creator.
func (s *ProjectServiceImpl) ListMine(ctx context.Context, userID string) ([]dto.ProjectResponse, error) {
	projects, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	responses := make([]dto.ProjectResponse, 0)
	for i := range projects {
		if !projectInvolves(&projects[i], userID) {
			continue
		}
		resp, err := s.toResponse(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func projectInvolves(project *models.Project, userID string) bool {
	if project.AssigneeID == userID || project.CreatedByID == userID {
		return true
	}
	for _, id := range project.MemberIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *ProjectServiceImpl) Update(ctx context.Context, id string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	project, err := s.findProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.AcceptanceCriteria != nil {
		project.AcceptanceCriteria = *req.AcceptanceCriteria
	}
	if req.Members != nil {
		if err := s.checkMembers(ctx, req.Members); err != nil {
			return nil, err
		}
		project.SetMemberIDs(req.Members)
	}
	if req.Deadline != nil {
		project.Deadline = *req.Deadline
	}
	if req.ClientDetails != nil {
		project.ClientDetails = *req.ClientDetails
	}
	if req.Status != nil {
		if !models.ValidProjectStatus(*req.Status) {
			return nil, appErrors.ValidationError("unknown project status")
		}
		project.Status = *req.Status
	}
	if req.AssigneeID != nil {
		if err := s.checkAssignee(ctx, *req.AssigneeID); err != nil {
			return nil, err
		}
		project.AssigneeID = *req.AssigneeID
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return s.toResponse(ctx, project)
}

// Delete removes the project with its tasks and all comments on either.
func (s *ProjectServiceImpl) Delete(ctx context.Context, id string) error {
	project, err := s.findProject(ctx, id)
	if err != nil {
		return err
	}

	tasks, err := s.taskRepo.FindByProject(ctx, project.ID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	for i := range tasks {
		if err := s.commentRepo.DeleteByTask(ctx, tasks[i].ID); err != nil {
			return appErrors.InternalError(err)
		}
	}
	if err := s.taskRepo.DeleteByProject(ctx, project.ID); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.commentRepo.DeleteByProject(ctx, project.ID); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *ProjectServiceImpl) AddComment(ctx context.Context, projectID, authorID string, req *dto.CommentRequest) (*dto.CommentResponse, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:      req.Text,
		SentByID:  authorID,
		ProjectID: &project.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return s.commentResponse(ctx, comment)
}

func (s *ProjectServiceImpl) ListComments(ctx context.Context, projectID string) ([]dto.CommentResponse, error) {
	if _, err := s.findProject(ctx, projectID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.FindByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return s.commentResponses(ctx, comments)
}

// DeleteComment allows the author or an admin to remove a comment.
func (s *ProjectServiceImpl) DeleteComment(ctx context.Context, projectID, commentID, requesterID string, requesterRole models.UserRole) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return appErrors.ErrCommentNotFound
		}
		return appErrors.InternalError(err)
	}
	if comment.ProjectID == nil || *comment.ProjectID != projectID {
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

// DashboardStats aggregates project counts for the dashboard overview.
func (s *ProjectServiceImpl) DashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	total, err := s.projectRepo.CountAll(ctx)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	finished, err := s.projectRepo.CountByStatuses(ctx, models.ProjectStatusClose, models.ProjectStatusWontDone)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	blocked, err := s.projectRepo.CountByStatuses(ctx, models.ProjectStatusBlock)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	active, err := s.projectRepo.CountNotInStatuses(ctx,
		models.ProjectStatusClose, models.ProjectStatusWontDone, models.ProjectStatusBlock)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	grouped, err := s.projectRepo.CountGroupedByStatus(ctx)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	byStatus := make([]dto.StatusCount, 0, len(grouped))
	for _, g := range grouped {
		byStatus = append(byStatus, dto.StatusCount{Status: g.Status, Count: g.Count})
	}

	projects, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	var upcoming int64
	memberSet := make(map[string]struct{})
	for i := range projects {
		if upcomingDeadline(projects[i].Deadline, 7*24*time.Hour) {
			upcoming++
		}
		for _, id := range projects[i].MemberIDs() {
			memberSet[id] = struct{}{}
		}
	}

	return &dto.DashboardStats{
		TotalProjects:     total,
		ActiveProjects:    active,
		FinishedProjects:  finished,
		BlockedProjects:   blocked,
		UpcomingDeadlines: upcoming,
		UniqueMembers:     int64(len(memberSet)),
		ByStatus:          byStatus,
	}, nil
}

func (s *ProjectServiceImpl) findProject(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, appErrors.ErrProjectNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	return project, nil
}

func (s *ProjectServiceImpl) checkAssignee(ctx context.Context, id string) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return appErrors.ErrAssigneeNotFound
		}
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *ProjectServiceImpl) checkMembers(ctx context.Context, ids []string) error {
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

func (s *ProjectServiceImpl) toResponse(ctx context.Context, project *models.Project) (*dto.ProjectResponse, error) {
	members, err := s.memberInfos(ctx, project.MemberIDs())
	if err != nil {
		return nil, err
	}
	commentCount, err := s.commentRepo.CountByProject(ctx, project.ID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return &dto.ProjectResponse{
		ID:                 project.ID,
		Title:              project.Title,
		Description:        project.Description,
		AcceptanceCriteria: project.AcceptanceCriteria,
		Members:            members,
		Deadline:           project.Deadline,
		ClientDetails:      project.ClientDetails,
		Status:             project.Status,
		AssigneeID:         project.AssigneeID,
		CreatedByID:        project.CreatedByID,
		CommentCount:       commentCount,
		CreatedAt:          project.CreatedAt,
		UpdatedAt:          project.UpdatedAt,
	}, nil
}

func (s *ProjectServiceImpl) memberInfos(ctx context.Context, ids []string) ([]dto.UserInfo, error) {
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

func (s *ProjectServiceImpl) commentResponse(ctx context.Context, comment *models.Comment) (*dto.CommentResponse, error) {
	author, err := s.userRepo.FindByID(ctx, comment.SentByID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, appErrors.InternalError(err)
	}
	resp := &dto.CommentResponse{
		ID:        comment.ID,
		Text:      comment.Text,
		ProjectID: comment.ProjectID,
		TaskID:    comment.TaskID,
		CreatedAt: comment.CreatedAt,
	}
	if author != nil {
		resp.SentBy = dto.NewUserInfo(author)
	}
	return resp, nil
}

func (s *ProjectServiceImpl) commentResponses(ctx context.Context, comments []models.Comment) ([]dto.CommentResponse, error) {
	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		resp, err := s.commentResponse(ctx, &comments[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// upcomingDeadline reports whether the deadline falls within the window.
func upcomingDeadline(deadline time.Time, window time.Duration) bool {
	now := time.Now()
	return deadline.After(now) && deadline.Before(now.Add(window))
}
