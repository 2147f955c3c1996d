package repository

import (
	"context"

	"ratethem-backend/internal/models"

	"gorm.io/gorm"
)

// ItemFilter narrows item listings; zero values disable a filter
type ItemFilter struct {
	CategoryID uint
	Tags       []string
}

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Categories").Preload("Tags")
}

// CreateItem inserts an item and links its categories and tags
func (r *ItemRepository) CreateItem(ctx context.Context, item *models.Item) error {
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

// FindItemByID loads an item with its categories and tags
func (r *ItemRepository) FindItemByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	err := r.withRelations(ctx).First(&item, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// ItemExists reports whether an item with id exists
func (r *ItemRepository) ItemExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListItems returns items matching filter ordered by id.
// Items match the tag filter when they carry at least one of the tags.
func (r *ItemRepository) ListItems(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	q := r.withRelations(ctx).Model(&models.Item{})

	if filter.CategoryID != 0 {
		q = q.Where("items.id IN (?)",
			r.db.Table("item_category").Select("item_id").Where("category_id = ?", filter.CategoryID))
	}

	if len(filter.Tags) > 0 {
		q = q.Where("items.id IN (?)",
			r.db.Table("item_tag").
				Select("item_tag.item_id").
				Joins("JOIN tags ON tags.id = item_tag.tag_id").
				Where("tags.name IN ?", filter.Tags))
	}

	var items []models.Item
	err := q.Order("items.id ASC").Find(&items).Error
	return items, err
}

// UpdateItem persists the scalar fields of an item
func (r *ItemRepository) UpdateItem(ctx context.Context, item *models.Item) error {
	return translate(r.db.WithContext(ctx).
		Model(item).
		Select("name", "description", "image_url").
		Updates(item).Error)
}

// ReplaceCategories swaps the category links of an item
func (r *ItemRepository) ReplaceCategories(ctx context.Context, item *models.Item, categories []models.Category) error {
	assoc := r.db.WithContext(ctx).Model(item).Association("Categories")
	if len(categories) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(categories)
}

// ReplaceTags swaps the tag links of an item
func (r *ItemRepository) ReplaceTags(ctx context.Context, item *models.Item, tags []models.Tag) error {
	assoc := r.db.WithContext(ctx).Model(item).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(tags)
}

// DeleteItem removes an item, its ratings and its category and tag links
func (r *ItemRepository) DeleteItem(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM item_category WHERE item_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM item_tag WHERE item_id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Item{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// RatingAggregates computes average and count of ratings per item for the given ids.
// Items without ratings are absent from the result.
func (r *ItemRepository) RatingAggregates(ctx context.Context, itemIDs []uint) (map[uint]models.ItemRatingAggregate, error) {
	result := make(map[uint]models.ItemRatingAggregate, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	var rows []models.ItemRatingAggregate
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("item_id, AVG(value) AS avg_rating, COUNT(id) AS count_rating").
		Where("item_id IN ?", itemIDs).
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ItemID] = row
	}
	return result, nil
}

// ListUnratedBy returns the newest items the user has not rated yet
func (r *ItemRepository) ListUnratedBy(ctx context.Context, userID uint, limit int) ([]models.Item, error) {
	var items []models.Item
	err := r.withRelations(ctx).
		Where("items.id NOT IN (?)", r.db.Model(&models.Rating{}).Select("item_id").Where("user_id = ?", userID)).
		Order("items.created_at DESC, items.id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
