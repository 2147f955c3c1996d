package handler

import (
	"net/http"

	"ratethem-backend/internal/service"
	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// TokenRequest is the OAuth2 password grant form
type TokenRequest struct {
	GrantType string `form:"grant_type"`
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6"`
	ImageURL string `json:"image_url" binding:"omitempty,url,max=500"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type EditProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	ImageURL *string `json:"image_url" binding:"omitempty,max=500"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, user)
}

// Token implements the OAuth2 password grant; the username field carries the email
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if req.GrantType != "" && req.GrantType != "password" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported_grant_type",
			"error_description": "Only the password grant is supported",
		})
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	writeTokenPair(c, pair)
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	writeTokenPair(c, pair)
}

// Logout revokes the refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// LogoutAll revokes every refresh token of the caller
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	if err := h.authService.LogoutAll(c.Request.Context(), actorFrom(c).UserID); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// Me returns the caller's profile
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userService.CurrentUser(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// EditMe updates the caller's profile
func (h *AuthHandler) EditMe(c *gin.Context) {
	var req EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.UpdateSelf(c.Request.Context(), actorFrom(c), service.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// RemoveMe deletes the caller's account
func (h *AuthHandler) RemoveMe(c *gin.Context) {
	if err := h.userService.DeleteSelf(c.Request.Context(), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func writeTokenPair(c *gin.Context, pair *service.TokenPair) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusOK, pair)
}
