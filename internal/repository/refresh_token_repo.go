package repository

import (
	"context"
	"time"

	"ratethem-backend/internal/models"

	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepo(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create stores a new refresh token
func (r *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error)
}

// FindByHash returns the token row regardless of its state
func (r *RefreshTokenRepository) FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

// Rotate revokes the token identified by oldHash and stores next in one transaction.
// It fails with ErrTokenNotActive when the old token was already revoked or has
// expired, so two concurrent rotations of the same token cannot both succeed.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldHash string, next *models.RefreshToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("token_hash = ? AND revoked = ? AND expires_at > ?", oldHash, false, time.Now().UTC()).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrTokenNotActive
		}

		return translate(tx.Create(next).Error)
	})
}

// RevokeByHash marks a refresh token as revoked and reports whether a live token was hit
func (r *RefreshTokenRepository) RevokeByHash(ctx context.Context, hash string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", hash, false).
		Update("revoked", true)
	return res.RowsAffected > 0, res.Error
}

// RevokeAllForUser revokes every live token of a user
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)
	return res.RowsAffected, res.Error
}

// CountActiveForUser counts unrevoked, unexpired tokens of a user
func (r *RefreshTokenRepository) CountActiveForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, time.Now().UTC()).
		Count(&count).Error
	return count, err
}

// PurgeExpired deletes tokens that expired before now, revoked or not
func (r *RefreshTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
