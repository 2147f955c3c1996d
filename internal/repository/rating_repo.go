package repository

import (
	"context"
	"time"

	"ratethem-backend/internal/models"

	"gorm.io/gorm"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepo(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// CreateRating inserts a rating; a second rating of the same item by the
// same user fails with ErrDuplicate
func (r *RatingRepository) CreateRating(ctx context.Context, rating *models.Rating) error {
	return translate(r.db.WithContext(ctx).Create(rating).Error)
}

// FindRatingByID retrieves a rating by ID
func (r *RatingRepository) FindRatingByID(ctx context.Context, id uint) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).First(&rating, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rating, nil
}

// FindRatingByUserAndItem returns the rating a user gave an item
func (r *RatingRepository) FindRatingByUserAndItem(ctx context.Context, userID, itemID uint) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&rating).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rating, nil
}

// ListRatings returns every rating ordered by id
func (r *RatingRepository) ListRatings(ctx context.Context) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).Order("id ASC").Find(&ratings).Error
	return ratings, err
}

// ListRatingsByUser returns a user's ratings, newest first
func (r *RatingRepository) ListRatingsByUser(ctx context.Context, userID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&ratings).Error
	return ratings, err
}

// ListRatingsByItem returns an item's ratings, newest first
func (r *RatingRepository) ListRatingsByItem(ctx context.Context, itemID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Find(&ratings).Error
	return ratings, err
}

// UpdateRating persists value and comment
func (r *RatingRepository) UpdateRating(ctx context.Context, rating *models.Rating) error {
	return translate(r.db.WithContext(ctx).
		Model(rating).
		Select("value", "comment").
		Updates(rating).Error)
}

// DeleteRating removes a rating
func (r *RatingRepository) DeleteRating(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Rating{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AverageAndCount returns the global average value and number of ratings
func (r *RatingRepository) AverageAndCount(ctx context.Context) (float64, int64, error) {
	var row struct {
		Average float64
		Total   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("COALESCE(AVG(value), 0) AS average, COUNT(id) AS total").
		Scan(&row).Error
	return row.Average, row.Total, err
}

// Values returns every rating value
func (r *RatingRepository) Values(ctx context.Context) ([]float64, error) {
	var values []float64
	err := r.db.WithContext(ctx).Model(&models.Rating{}).Pluck("value", &values).Error
	return values, err
}

// Recent returns the newest ratings with item and author names
func (r *RatingRepository) Recent(ctx context.Context, limit int) ([]models.RecentRating, error) {
	var recent []models.RecentRating
	err := r.db.WithContext(ctx).
		Table("ratings").
		Select("ratings.id, ratings.value, items.name AS item_name, users.name AS user_name, ratings.created_at").
		Joins("JOIN items ON items.id = ratings.item_id").
		Joins("JOIN users ON users.id = ratings.user_id").
		Order("ratings.created_at DESC, ratings.id DESC").
		Limit(limit).
		Scan(&recent).Error
	return recent, err
}

// TopCategory returns the category whose items received the most ratings, or nil
func (r *RatingRepository) TopCategory(ctx context.Context) (*models.TopCategory, error) {
	var top []models.TopCategory
	err := r.db.WithContext(ctx).
		Table("ratings").
		Select("categories.name AS name, COUNT(ratings.id) AS count").
		Joins("JOIN item_category ON item_category.item_id = ratings.item_id").
		Joins("JOIN categories ON categories.id = item_category.category_id").
		Group("categories.id, categories.name").
		Order("count DESC, categories.name ASC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, nil
	}
	return &top[0], nil
}

// CountRaters counts distinct users who rated since the given time; zero since counts all time
func (r *RatingRepository) CountRaters(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Rating{})
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	err := q.Distinct("user_id").Count(&count).Error
	return count, err
}
