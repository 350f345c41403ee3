package services

import (
	"context"
	"errors"

	"taskhub_backend/internal/appErrors"
	"taskhub_backend/internal/models"
	"taskhub_backend/internal/repositories"
	"taskhub_backend/internal/services/dto"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserInfo, error)
	List(ctx context.Context, limit, offset int) (*dto.UserListResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserInfo, error)
	Delete(ctx context.Context, id string) error
}

type UserServiceImpl struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
}

func NewUserService(userRepo repositories.UserRepository, tokenRepo repositories.RefreshTokenRepository) UserService {
	return &UserServiceImpl{userRepo: userRepo, tokenRepo: tokenRepo}
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id string) (*dto.UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	info := dto.NewUserInfo(user)
	return &info, nil
}

func (s *UserServiceImpl) List(ctx context.Context, limit, offset int) (*dto.UserListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.userRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	infos := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, dto.NewUserInfo(&users[i]))
	}
	return &dto.UserListResponse{Users: infos, Limit: limit, Offset: offset}, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, appErrors.InternalError(err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return nil, appErrors.ErrInvalidUserRole
		}
		// A role change invalidates the old role's tokens, otherwise
		// sessions minted under the previous secrets stay live.
		if user.Role != *req.Role {
			if err := s.tokenRepo.DeleteByUserID(ctx, user.ID); err != nil {
				return nil, appErrors.InternalError(err)
			}
			user.Role = *req.Role
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, appErrors.InternalError(err)
	}
	info := dto.NewUserInfo(user)
	return &info, nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.tokenRepo.DeleteByUserID(ctx, id); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return appErrors.ErrUserNotFound
		}
		return appErrors.InternalError(err)
	}
	return nil
}
