package repositories

import (
	"context"
	"errors"

	"taskhub_backend/internal/models"

	"gorm.io/gorm"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	FindByProject(ctx context.Context, projectID string) ([]models.Comment, error)
	FindByTask(ctx context.Context, taskID string) ([]models.Comment, error)
	CountByProject(ctx context.Context, projectID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
	DeleteByTask(ctx context.Context, taskID string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindByProject(ctx context.Context, projectID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) FindByTask(ctx context.Context, taskID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error
}

func (r *commentRepository) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.Comment{}).Error
}

func (r *commentRepository) DeleteByTask(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Delete(&models.Comment{}).Error
}
