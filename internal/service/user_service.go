package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ratethem-backend/internal/models"
	"ratethem-backend/internal/repository"
	"ratethem-backend/pkg/utils"
)

const (
	defaultGrowthDays      = 30
	maxGrowthDays          = 366
	defaultEngagementLimit = 10
	maxEngagementLimit     = 100
	recommendationLimit    = 10
	activeUserWindow       = 30 * 24 * time.Hour
	growthDateLayout       = "2006-01-02"
)

// UserInput carries the fields of an admin-created account
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	ImageURL string
}

// UserUpdate carries optional profile changes; nil fields are left untouched
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
	ImageURL *string
}

type UserService struct {
	userRepo   *repository.UserRepository
	ratingRepo *repository.RatingRepository
	itemRepo   *repository.ItemRepository
	auditRepo  *repository.AuditRepository
	now        func() time.Time
}

func NewUserService(
	userRepo *repository.UserRepository,
	ratingRepo *repository.RatingRepository,
	itemRepo *repository.ItemRepository,
	auditRepo *repository.AuditRepository,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		ratingRepo: ratingRepo,
		itemRepo:   itemRepo,
		auditRepo:  auditRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CurrentUser loads the caller's account; a token for a deleted account is rejected
func (s *UserService) CurrentUser(ctx context.Context, actor Actor) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errUnauthenticated()
		}
		return nil, errInternal("get current user", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return nil, lookupErr("User", id, "get user", err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, errInternal("list users", err)
	}
	return users, nil
}

// CreateUser creates an account with an explicit role (admin only)
func (s *UserService) CreateUser(ctx context.Context, actor Actor, in UserInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !validRole(role) {
		return nil, errInvalidInput("Role must be user or admin")
	}

	taken, err := s.userRepo.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, errInternal("check email", err)
	}
	if taken {
		return nil, errEmailTaken(email)
	}

	passwordHash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, errInternal("hash password", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		ImageURL:     in.ImageURL,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errEmailTaken(email)
		}
		return nil, errInternal("create user", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &actor.UserID, "user_create", fmt.Sprintf("Created user %s with role %s", email, role))

	return user, nil
}

// UpdateUser applies an admin's changes to any account, role included
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, id uint, in UserUpdate) (*models.User, error) {
	user, err := s.applyUpdate(ctx, id, in, true)
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &actor.UserID, "user_update", fmt.Sprintf("Updated user ID: %d", id))

	return user, nil
}

// UpdateSelf applies the caller's own profile changes; the role cannot be changed this way
func (s *UserService) UpdateSelf(ctx context.Context, actor Actor, in UserUpdate) (*models.User, error) {
	in.Role = nil
	user, err := s.applyUpdate(ctx, actor.UserID, in, false)
	if err != nil {
		if ErrorCode(err) == CodeNotFound {
			return nil, errUnauthenticated()
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account with its ratings and refresh tokens (admin only)
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, id uint) error {
	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound("User", id)
		}
		return errInternal("delete user", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &actor.UserID, "user_delete", fmt.Sprintf("Deleted user ID: %d", id))

	return nil
}

// DeleteSelf removes the caller's own account
func (s *UserService) DeleteSelf(ctx context.Context, actor Actor) error {
	if err := s.userRepo.DeleteUser(ctx, actor.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errUnauthenticated()
		}
		return errInternal("delete user", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, nil, "user_self_delete", fmt.Sprintf("User ID %d deleted their account", actor.UserID))

	return nil
}

// UserRatings lists a user's ratings; callers may only read their own unless admin
func (s *UserService) UserRatings(ctx context.Context, actor Actor, id uint) ([]models.Rating, error) {
	if !actor.CanActOn(id) {
		return nil, errForbidden("You can only view your own ratings")
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}

	ratings, err := s.ratingRepo.ListRatingsByUser(ctx, id)
	if err != nil {
		return nil, errInternal("list user ratings", err)
	}
	return ratings, nil
}

// Recommendations returns the newest items the user has not rated yet
func (s *UserService) Recommendations(ctx context.Context, actor Actor, id uint) ([]models.ItemWithStats, error) {
	if !actor.CanActOn(id) {
		return nil, errForbidden("You can only view your own recommendations")
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}

	items, err := s.itemRepo.ListUnratedBy(ctx, id, recommendationLimit)
	if err != nil {
		return nil, errInternal("list recommendations", err)
	}
	return attachStats(ctx, s.itemRepo, items)
}

// Growth returns the number of accounts created on each of the last days days, oldest first
func (s *UserService) Growth(ctx context.Context, days int) ([]models.UserGrowthPoint, error) {
	if days <= 0 {
		days = defaultGrowthDays
	}
	if days > maxGrowthDays {
		return nil, errInvalidInput("days must be at most %d", maxGrowthDays)
	}

	today := startOfDay(s.now())
	start := today.AddDate(0, 0, -(days - 1))

	times, err := s.userRepo.CreationTimesSince(ctx, start)
	if err != nil {
		return nil, errInternal("user growth", err)
	}

	counts := make(map[string]int64, days)
	for _, t := range times {
		counts[t.UTC().Format(growthDateLayout)]++
	}

	points := make([]models.UserGrowthPoint, 0, days)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(growthDateLayout)
		points = append(points, models.UserGrowthPoint{Date: key, Count: counts[key]})
	}
	return points, nil
}

// Engagement returns the most active raters
func (s *UserService) Engagement(ctx context.Context, limit int) ([]models.UserEngagement, error) {
	if limit <= 0 {
		limit = defaultEngagementLimit
	}
	if limit > maxEngagementLimit {
		return nil, errInvalidInput("limit must be at most %d", maxEngagementLimit)
	}

	engagement, err := s.userRepo.TopRaters(ctx, limit)
	if err != nil {
		return nil, errInternal("user engagement", err)
	}
	return engagement, nil
}

// Stats summarises account activity for the admin dashboard
func (s *UserService) Stats(ctx context.Context) (*models.UserStats, error) {
	now := s.now()

	total, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, errInternal("count users", err)
	}

	active, err := s.ratingRepo.CountRaters(ctx, now.Add(-activeUserWindow))
	if err != nil {
		return nil, errInternal("count active users", err)
	}

	newToday, err := s.userRepo.CountUsersCreatedSince(ctx, startOfDay(now))
	if err != nil {
		return nil, errInternal("count new users", err)
	}

	_, ratingsTotal, err := s.ratingRepo.AverageAndCount(ctx)
	if err != nil {
		return nil, errInternal("count ratings", err)
	}

	raters, err := s.ratingRepo.CountRaters(ctx, time.Time{})
	if err != nil {
		return nil, errInternal("count raters", err)
	}

	var average float64
	if raters > 0 {
		average = math.Round(float64(ratingsTotal)/float64(raters)*10) / 10
	}

	return &models.UserStats{
		TotalUsers:            total,
		ActiveUsers:           active,
		NewUsersToday:         newToday,
		AverageRatingsPerUser: average,
	}, nil
}

func (s *UserService) applyUpdate(ctx context.Context, id uint, in UserUpdate, allowRole bool) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return nil, lookupErr("User", id, "get user", err)
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		taken, err := s.userRepo.EmailTaken(ctx, email, id)
		if err != nil {
			return nil, errInternal("check email", err)
		}
		if taken {
			return nil, errEmailTaken(email)
		}
		user.Email = email
	}
	if in.Password != nil {
		passwordHash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, errInternal("hash password", err)
		}
		user.PasswordHash = passwordHash
	}
	if in.Role != nil && allowRole {
		if !validRole(*in.Role) {
			return nil, errInvalidInput("Role must be user or admin")
		}
		user.Role = *in.Role
	}
	if in.ImageURL != nil {
		user.ImageURL = *in.ImageURL
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errEmailTaken(user.Email)
		}
		return nil, errInternal("update user", err)
	}
	return user, nil
}

func validRole(role string) bool {
	return role == models.RoleUser || role == models.RoleAdmin
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
