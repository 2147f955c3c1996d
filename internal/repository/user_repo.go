package repository

import (
	"context"
	"time"

	"ratethem-backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindUserByEmail finds a user by email
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindUserByID finds a user by primary key
func (r *UserRepository) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UserExists reports whether an account with id exists
func (r *UserRepository) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// EmailTaken reports whether another account already uses email
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// ListUsers returns every user ordered by id
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

// CreateUser creates a new user
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// UpdateUser persists profile fields of an existing user
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).
		Model(user).
		Select("name", "email", "hashed_password", "role", "image_url").
		Updates(user).Error)
}

// DeleteUser removes a user together with their ratings and refresh tokens.
// Audit entries are kept with the user reference cleared.
func (r *UserRepository) DeleteUser(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AuditLog{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CountUsers counts all accounts
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountUsersCreatedSince counts accounts created at or after since
func (r *UserRepository) CountUsersCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// CreationTimesSince returns the created_at of every account created at or after since
func (r *UserRepository) CreationTimesSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &times).Error
	return times, err
}

// TopRaters returns the users with the most ratings, including their last rating time
func (r *UserRepository) TopRaters(ctx context.Context, limit int) ([]models.UserEngagement, error) {
	type row struct {
		UserID       uint
		Username     string
		RatingsCount int64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS user_id, users.name AS username, COUNT(ratings.id) AS ratings_count").
		Joins("LEFT JOIN ratings ON ratings.user_id = users.id").
		Group("users.id, users.name").
		Order("ratings_count DESC, users.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]models.UserEngagement, 0, len(rows))
	for _, rw := range rows {
		engagement := models.UserEngagement{
			UserID:       rw.UserID,
			Username:     rw.Username,
			RatingsCount: rw.RatingsCount,
		}

		if rw.RatingsCount > 0 {
			var last models.Rating
			err := r.db.WithContext(ctx).
				Where("user_id = ?", rw.UserID).
				Order("created_at DESC").
				Select("created_at").
				First(&last).Error
			if err != nil {
				return nil, translate(err)
			}
			engagement.LastActivity = &last.CreatedAt
		}

		result = append(result, engagement)
	}

	return result, nil
}
