package handler

import (
	"ratethem-backend/internal/service"
	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
	ImageURL string `json:"image_url" binding:"omitempty,max=500"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin user"`
	ImageURL *string `json:"image_url" binding:"omitempty,max=500"`
}

// GetAllUsers lists every account (admin only)
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, users)
}

// GetUser retrieves a specific user by ID
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// CreateUser creates an account with a chosen role (admin only)
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), actorFrom(c), service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, user)
}

// UpdateUser updates any account (admin only)
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), actorFrom(c), id, service.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// DeleteUser removes an account and everything it owns (admin only)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// GetUserRatings lists a user's ratings (self or admin)
func (h *UserHandler) GetUserRatings(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ratings, err := h.userService.UserRatings(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, ratings)
}

// GetRecommendations lists items the user has not rated yet (self or admin)
func (h *UserHandler) GetRecommendations(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	items, err := h.userService.Recommendations(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, items)
}

// GetStats returns account statistics (admin only)
func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.userService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GetGrowth returns daily sign-ups over ?days= (admin only)
func (h *UserHandler) GetGrowth(c *gin.Context) {
	days, ok := queryInt(c, "days", 0)
	if !ok {
		return
	}

	growth, err := h.userService.Growth(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, growth)
}

// GetEngagement returns the most active raters, up to ?limit= (admin only)
func (h *UserHandler) GetEngagement(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	engagement, err := h.userService.Engagement(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, engagement)
}
