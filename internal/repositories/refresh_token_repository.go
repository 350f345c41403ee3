package repositories

import (
	"context"
	"errors"
	"time"

	"taskhub_backend/internal/models"

	"gorm.io/gorm"
)

// ErrRefreshTokenNotFound is returned when the token is absent from the
// store. During rotation this is how a replayed token is detected.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error

	// Exists reports whether the token is registered for the user.
	Exists(ctx context.Context, userID, token string) (bool, error)

	// DeleteByToken removes the token and returns ErrRefreshTokenNotFound
	// when nothing was deleted. The single DELETE is the compare-and-remove
	// that lets exactly one of two concurrent rotations win.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUserID revokes every token of the user.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired prunes tokens past their expiry.
	DeleteExpired(ctx context.Context) (int64, error)

	CountByUserID(ctx context.Context, userID string) (int64, error)
}

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *refreshTokenRepository) Exists(ctx context.Context, userID, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND token = ? AND expires_at > ?", userID, token, time.Now()).
		Count(&count).Error
	return count > 0, err
}

func (r *refreshTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

func (r *refreshTokenRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Count(&count).Error
	return count, err
}
