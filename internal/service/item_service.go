package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ratethem-backend/internal/models"
	"ratethem-backend/internal/repository"
)

// ItemInput carries the writable fields of an item
type ItemInput struct {
	Name        string
	Description string
	ImageURL    string
	CategoryIDs []uint
	Tags        []string
}

// ItemUpdate carries optional item changes; nil fields are left untouched
type ItemUpdate struct {
	Name        *string
	Description *string
	ImageURL    *string
}

type ItemService struct {
	itemRepo     *repository.ItemRepository
	categoryRepo *repository.CategoryRepository
	tagRepo      *repository.TagRepository
	ratingRepo   *repository.RatingRepository
	auditRepo    *repository.AuditRepository
}

func NewItemService(
	itemRepo *repository.ItemRepository,
	categoryRepo *repository.CategoryRepository,
	tagRepo *repository.TagRepository,
	ratingRepo *repository.RatingRepository,
	auditRepo *repository.AuditRepository,
) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		ratingRepo:   ratingRepo,
		auditRepo:    auditRepo,
	}
}

// CreateItem creates an item linked to existing categories and to tags
// resolved by name
func (s *ItemService) CreateItem(ctx context.Context, actor Actor, in ItemInput) (*models.ItemWithStats, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errInvalidInput("Item name cannot be empty")
	}

	categories, err := s.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		Name:        name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Categories:  categories,
		Tags:        tags,
	}

	if err := s.itemRepo.CreateItem(ctx, item); err != nil {
		return nil, errInternal("create item", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &actor.UserID, "item_create", fmt.Sprintf("Created item: %s (ID: %d)", item.Name, item.ID))

	return s.GetItem(ctx, item.ID)
}

// GetItem returns an item with its rating aggregate
func (s *ItemService) GetItem(ctx context.Context, id uint) (*models.ItemWithStats, error) {
	item, err := s.itemRepo.FindItemByID(ctx, id)
	if err != nil {
		return nil, lookupErr("Item", id, "get item", err)
	}

	enriched, err := attachStats(ctx, s.itemRepo, []models.Item{*item})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// ListItems returns items matching the filter with their rating aggregates
func (s *ItemService) ListItems(ctx context.Context, filter repository.ItemFilter) ([]models.ItemWithStats, error) {
	filter.Tags = cleanNames(filter.Tags)

	items, err := s.itemRepo.ListItems(ctx, filter)
	if err != nil {
		return nil, errInternal("list items", err)
	}
	return attachStats(ctx, s.itemRepo, items)
}

// UpdateItem applies the non-nil fields of in
func (s *ItemService) UpdateItem(ctx context.Context, actor Actor, id uint, in ItemUpdate) (*models.ItemWithStats, error) {
	item, err := s.itemRepo.FindItemByID(ctx, id)
	if err != nil {
		return nil, lookupErr("Item", id, "get item", err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errInvalidInput("Item name cannot be empty")
		}
		item.Name = name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.ImageURL != nil {
		item.ImageURL = *in.ImageURL
	}

	if err := s.itemRepo.UpdateItem(ctx, item); err != nil {
		return nil, errInternal("update item", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &actor.UserID, "item_update", fmt.Sprintf("Updated item: %s (ID: %d)", item.Name, item.ID))

	return s.GetItem(ctx, id)
}

// SetCategories replaces the categories of an item
func (s *ItemService) SetCategories(ctx context.Context, id uint, categoryIDs []uint) error {
	item, err := s.itemRepo.FindItemByID(ctx, id)
	if err != nil {
		return lookupErr("Item", id, "get item", err)
	}

	categories, err := s.resolveCategories(ctx, categoryIDs)
	if err != nil {
		return err
	}

	if err := s.itemRepo.ReplaceCategories(ctx, item, categories); err != nil {
		return errInternal("replace item categories", err)
	}
	return nil
}

// SetTags replaces the tags of an item, creating unknown tag names
func (s *ItemService) SetTags(ctx context.Context, id uint, names []string) error {
	item, err := s.itemRepo.FindItemByID(ctx, id)
	if err != nil {
		return lookupErr("Item", id, "get item", err)
	}

	tags, err := s.resolveTags(ctx, names)
	if err != nil {
		return err
	}

	if err := s.itemRepo.ReplaceTags(ctx, item, tags); err != nil {
		return errInternal("replace item tags", err)
	}
	return nil
}

// ListItemRatings returns the ratings of an item
func (s *ItemService) ListItemRatings(ctx context.Context, id uint) ([]models.Rating, error) {
	exists, err := s.itemRepo.ItemExists(ctx, id)
	if err != nil {
		return nil, errInternal("check item", err)
	}
	if !exists {
		return nil, errNotFound("Item", id)
	}

	ratings, err := s.ratingRepo.ListRatingsByItem(ctx, id)
	if err != nil {
		return nil, errInternal("list item ratings", err)
	}
	return ratings, nil
}

// DeleteItem removes an item together with its ratings and links
func (s *ItemService) DeleteItem(ctx context.Context, actor Actor, id uint) error {
	if err := s.itemRepo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound("Item", id)
		}
		return errInternal("delete item", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &actor.UserID, "item_delete", fmt.Sprintf("Deleted item ID: %d", id))

	return nil
}

func (s *ItemService) resolveCategories(ctx context.Context, ids []uint) ([]models.Category, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []models.Category{}, nil
	}

	categories, err := s.categoryRepo.FindCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, errInternal("find categories", err)
	}
	if len(categories) != len(ids) {
		return nil, errInvalidInput("One or more categories do not exist")
	}
	return categories, nil
}

func (s *ItemService) resolveTags(ctx context.Context, names []string) ([]models.Tag, error) {
	names = cleanNames(names)
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	tags, err := s.tagRepo.FindOrCreateTags(ctx, names)
	if err != nil {
		return nil, errInternal("resolve tags", err)
	}
	return tags, nil
}

// attachStats pairs each item with its average rating and rating count
func attachStats(ctx context.Context, itemRepo *repository.ItemRepository, items []models.Item) ([]models.ItemWithStats, error) {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	aggregates, err := itemRepo.RatingAggregates(ctx, ids)
	if err != nil {
		return nil, errInternal("aggregate ratings", err)
	}

	result := make([]models.ItemWithStats, len(items))
	for i, item := range items {
		if item.Categories == nil {
			item.Categories = []models.Category{}
		}
		if item.Tags == nil {
			item.Tags = []models.Tag{}
		}
		agg := aggregates[item.ID]
		result[i] = models.ItemWithStats{
			Item:        item,
			AvgRating:   agg.AvgRating,
			CountRating: agg.CountRating,
		}
	}
	return result, nil
}

// cleanNames trims names and drops blanks and duplicates, keeping order
func cleanNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
