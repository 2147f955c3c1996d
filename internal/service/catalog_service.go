package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ratethem-backend/internal/models"
	"ratethem-backend/internal/repository"
)

// CategoryInput carries the writable fields of a category
type CategoryInput struct {
	Name        string
	Description string
}

type CategoryService struct {
	categoryRepo *repository.CategoryRepository
	auditRepo    *repository.AuditRepository
}

func NewCategoryService(categoryRepo *repository.CategoryRepository, auditRepo *repository.AuditRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
	}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, errInternal("list categories", err)
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, lookupErr("Category", id, "get category", err)
	}
	return category, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, actor Actor, in CategoryInput) (*models.Category, error) {
	category := &models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	if category.Name == "" {
		return nil, errInvalidInput("Category name cannot be empty")
	}

	if err := s.categoryRepo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errConflict("Category %q already exists", category.Name)
		}
		return nil, errInternal("create category", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &actor.UserID, "category_create", fmt.Sprintf("Created category: %s", category.Name))

	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, actor Actor, id uint, in CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, lookupErr("Category", id, "get category", err)
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		category.Name = name
	}
	category.Description = in.Description

	if err := s.categoryRepo.UpdateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errConflict("Category %q already exists", category.Name)
		}
		return nil, errInternal("update category", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &actor.UserID, "category_update", fmt.Sprintf("Updated category: %s (ID: %d)", category.Name, id))

	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, actor Actor, id uint) error {
	if err := s.categoryRepo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound("Category", id)
		}
		return errInternal("delete category", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &actor.UserID, "category_delete", fmt.Sprintf("Deleted category ID: %d", id))

	return nil
}

type TagService struct {
	tagRepo *repository.TagRepository
}

func NewTagService(tagRepo *repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tagRepo.ListTags(ctx)
	if err != nil {
		return nil, errInternal("list tags", err)
	}
	return tags, nil
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := s.tagRepo.FindTagByID(ctx, id)
	if err != nil {
		return nil, lookupErr("Tag", id, "get tag", err)
	}
	return tag, nil
}

func (s *TagService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{Name: strings.TrimSpace(name)}
	if tag.Name == "" {
		return nil, errInvalidInput("Tag name cannot be empty")
	}

	if err := s.tagRepo.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errConflict("Tag %q already exists", tag.Name)
		}
		return nil, errInternal("create tag", err)
	}
	return tag, nil
}

func (s *TagService) UpdateTag(ctx context.Context, id uint, name string) (*models.Tag, error) {
	tag, err := s.tagRepo.FindTagByID(ctx, id)
	if err != nil {
		return nil, lookupErr("Tag", id, "get tag", err)
	}

	tag.Name = strings.TrimSpace(name)
	if tag.Name == "" {
		return nil, errInvalidInput("Tag name cannot be empty")
	}

	if err := s.tagRepo.UpdateTag(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errConflict("Tag %q already exists", tag.Name)
		}
		return nil, errInternal("update tag", err)
	}
	return tag, nil
}

func (s *TagService) DeleteTag(ctx context.Context, id uint) error {
	if err := s.tagRepo.DeleteTag(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound("Tag", id)
		}
		return errInternal("delete tag", err)
	}
	return nil
}
