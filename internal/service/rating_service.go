package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"ratethem-backend/internal/models"
	"ratethem-backend/internal/repository"
)

const defaultRecentLimit = 10

// RatingInput carries a new rating by the caller
type RatingInput struct {
	ItemID  uint
	Value   float64
	Comment *string
}

// RatingUpdate carries optional rating changes; nil fields are left untouched
type RatingUpdate struct {
	Value   *float64
	Comment *string
}

type RatingService struct {
	ratingRepo *repository.RatingRepository
	itemRepo   *repository.ItemRepository
}

func NewRatingService(ratingRepo *repository.RatingRepository, itemRepo *repository.ItemRepository) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		itemRepo:   itemRepo,
	}
}

// CreateRating records the caller's rating of an item.
// A second rating of the same item fails with CodeRatingDuplicate.
func (s *RatingService) CreateRating(ctx context.Context, actor Actor, in RatingInput) (*models.Rating, error) {
	if err := validateValue(in.Value); err != nil {
		return nil, err
	}

	exists, err := s.itemRepo.ItemExists(ctx, in.ItemID)
	if err != nil {
		return nil, errInternal("check item", err)
	}
	if !exists {
		return nil, errNotFound("Item", in.ItemID)
	}

	_, err = s.ratingRepo.FindRatingByUserAndItem(ctx, actor.UserID, in.ItemID)
	switch {
	case err == nil:
		return nil, errDuplicateRating(actor.UserID, in.ItemID)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, errInternal("find rating", err)
	}

	rating := &models.Rating{
		Value:   in.Value,
		Comment: normalizeComment(in.Comment),
		UserID:  actor.UserID,
		ItemID:  in.ItemID,
	}

	if err := s.ratingRepo.CreateRating(ctx, rating); err != nil {
		// lost a race with a concurrent request for the same pair
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicateRating(actor.UserID, in.ItemID)
		}
		// the author or the item went away after the checks above
		if errors.Is(err, repository.ErrMissingParent) {
			if ok, _ := s.itemRepo.ItemExists(ctx, in.ItemID); !ok {
				return nil, errNotFound("Item", in.ItemID)
			}
			return nil, errUnauthenticated()
		}
		return nil, errInternal("create rating", err)
	}

	return rating, nil
}

func (s *RatingService) GetRating(ctx context.Context, id uint) (*models.Rating, error) {
	rating, err := s.ratingRepo.FindRatingByID(ctx, id)
	if err != nil {
		return nil, lookupErr("Rating", id, "get rating", err)
	}
	return rating, nil
}

func (s *RatingService) ListRatings(ctx context.Context) ([]models.Rating, error) {
	ratings, err := s.ratingRepo.ListRatings(ctx)
	if err != nil {
		return nil, errInternal("list ratings", err)
	}
	return ratings, nil
}

// MyRating returns the caller's rating of an item
func (s *RatingService) MyRating(ctx context.Context, actor Actor, itemID uint) (*models.Rating, error) {
	rating, err := s.ratingRepo.FindRatingByUserAndItem(ctx, actor.UserID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errNotFound("Rating", itemID)
		}
		return nil, errInternal("find rating", err)
	}
	return rating, nil
}

// UpdateRating changes value or comment; only the author or an admin may do so
func (s *RatingService) UpdateRating(ctx context.Context, actor Actor, id uint, in RatingUpdate) (*models.Rating, error) {
	rating, err := s.ownedRating(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Value != nil {
		if err := validateValue(*in.Value); err != nil {
			return nil, err
		}
		rating.Value = *in.Value
	}
	if in.Comment != nil {
		rating.Comment = normalizeComment(in.Comment)
	}

	if err := s.ratingRepo.UpdateRating(ctx, rating); err != nil {
		return nil, errInternal("update rating", err)
	}
	return rating, nil
}

// RemoveComment clears the comment of a rating and keeps its value
func (s *RatingService) RemoveComment(ctx context.Context, actor Actor, id uint) (*models.Rating, error) {
	rating, err := s.ownedRating(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	rating.Comment = nil
	if err := s.ratingRepo.UpdateRating(ctx, rating); err != nil {
		return nil, errInternal("remove rating comment", err)
	}
	return rating, nil
}

func (s *RatingService) DeleteRating(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.ownedRating(ctx, actor, id); err != nil {
		return err
	}

	if err := s.ratingRepo.DeleteRating(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound("Rating", id)
		}
		return errInternal("delete rating", err)
	}
	return nil
}

// Stats returns the global average, total count and most rated category
func (s *RatingService) Stats(ctx context.Context) (*models.RatingStats, error) {
	average, total, err := s.ratingRepo.AverageAndCount(ctx)
	if err != nil {
		return nil, errInternal("rating average", err)
	}

	top, err := s.ratingRepo.TopCategory(ctx)
	if err != nil {
		return nil, errInternal("top category", err)
	}

	return &models.RatingStats{
		Average:     roundTo(average, 2),
		TotalCount:  total,
		TopCategory: top,
	}, nil
}

// Distribution counts ratings per rounded value from 0 to 5, including empty buckets
func (s *RatingService) Distribution(ctx context.Context) ([]models.RatingDistribution, error) {
	values, err := s.ratingRepo.Values(ctx)
	if err != nil {
		return nil, errInternal("rating values", err)
	}

	buckets := make([]models.RatingDistribution, int(models.MaxRatingValue)+1)
	for i := range buckets {
		buckets[i].Value = i
	}
	for _, v := range values {
		bucket := int(math.Round(v))
		if bucket < 0 || bucket >= len(buckets) {
			continue
		}
		buckets[bucket].Count++
	}
	return buckets, nil
}

// Recent returns the latest ratings with item and user names
func (s *RatingService) Recent(ctx context.Context, limit int) ([]models.RecentRating, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	recent, err := s.ratingRepo.Recent(ctx, limit)
	if err != nil {
		return nil, errInternal("recent ratings", err)
	}
	return recent, nil
}

func (s *RatingService) ownedRating(ctx context.Context, actor Actor, id uint) (*models.Rating, error) {
	rating, err := s.ratingRepo.FindRatingByID(ctx, id)
	if err != nil {
		return nil, lookupErr("Rating", id, "get rating", err)
	}
	if !actor.CanActOn(rating.UserID) {
		return nil, errForbidden("You can only modify your own ratings")
	}
	return rating, nil
}

func validateValue(v float64) error {
	if math.IsNaN(v) || v < models.MinRatingValue || v > models.MaxRatingValue {
		return errInvalidInput("Rating value must be between %.0f and %.0f", models.MinRatingValue, models.MaxRatingValue)
	}
	return nil
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
