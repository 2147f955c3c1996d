package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ratethem-backend/internal/models"
	"ratethem-backend/internal/repository"
	"ratethem-backend/pkg/utils"
)

// Actor is the authenticated caller as described by the access token
type Actor struct {
	UserID uint
	Email  string
	Role   string
}

// IsAdmin reports whether the caller holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanActOn reports whether the caller may act on resources owned by ownerID
func (a Actor) CanActOn(ownerID uint) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

// TokenPair is the OAuth2 token response body
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterInput carries the fields of a self-registration
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	ImageURL string
}

type AuthService struct {
	userRepo  *repository.UserRepository
	tokenRepo *repository.RefreshTokenRepository
	auditRepo *repository.AuditRepository
	debug     bool
}

func NewAuthService(
	userRepo *repository.UserRepository,
	tokenRepo *repository.RefreshTokenRepository,
	auditRepo *repository.AuditRepository,
	debug bool,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		auditRepo: auditRepo,
		debug:     debug,
	}
}

// Register creates a user account with the user role.
// In debug mode an email containing "admin" bootstraps an administrator.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

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

	role := models.RoleUser
	if s.debug && strings.Contains(email, "admin") {
		role = models.RoleAdmin
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

	_ = s.auditRepo.CreateAuditLog(ctx, &user.ID, "user_registration", fmt.Sprintf("User %s registered", email))

	return user, nil
}

// Login checks the password grant credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, errInternal("find user", err)
	}

	if !utils.ComparePassword(user.PasswordHash, password) {
		return nil, errInvalidCredentials()
	}

	pair, token, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, errInternal("store refresh token", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &user.ID, "user_login", fmt.Sprintf("User %s logged in", email))

	return pair, nil
}

// Refresh exchanges a live refresh token for a new pair and revokes the old token.
// A token can be exchanged exactly once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, errInvalidRefreshToken()
	}

	tokenHash := utils.HashRefreshToken(refreshToken)

	stored, err := s.tokenRepo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidRefreshToken()
		}
		return nil, errInternal("find refresh token", err)
	}

	if stored.Revoked {
		slog.WarnContext(ctx, "revoked refresh token presented", "user_id", stored.UserID, "token_id", stored.ID)
		return nil, errInvalidRefreshToken()
	}
	if !time.Now().UTC().Before(stored.ExpiresAt) {
		return nil, errInvalidRefreshToken()
	}

	user, err := s.userRepo.FindUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidRefreshToken()
		}
		return nil, errInternal("find user", err)
	}

	pair, next, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Rotate(ctx, tokenHash, next); err != nil {
		if errors.Is(err, repository.ErrTokenNotActive) {
			return nil, errInvalidRefreshToken()
		}
		return nil, errInternal("rotate refresh token", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &user.ID, "token_refresh", fmt.Sprintf("Refresh token %d rotated", stored.ID))

	return pair, nil
}

// Logout revokes the given refresh token; unknown tokens are ignored
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	revoked, err := s.tokenRepo.RevokeByHash(ctx, utils.HashRefreshToken(refreshToken))
	if err != nil {
		return errInternal("revoke refresh token", err)
	}

	if revoked {
		_ = s.auditRepo.CreateAuditLog(ctx, nil, "user_logout", "Refresh token revoked")
	}

	return nil
}

// LogoutAll revokes every live refresh token of the caller
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	count, err := s.tokenRepo.RevokeAllForUser(ctx, userID)
	if err != nil {
		return errInternal("revoke refresh tokens", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &userID, "user_logout_all", fmt.Sprintf("%d refresh tokens revoked", count))

	return nil
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, *models.RefreshToken, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, nil, errInternal("generate access token", err)
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, nil, errInternal("generate refresh token", err)
	}

	model := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: utils.HashRefreshToken(refreshToken),
		ExpiresAt: time.Now().UTC().Add(utils.GetRefreshTokenExpiry()),
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(utils.GetAccessTokenExpiry().Seconds()),
	}, model, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
