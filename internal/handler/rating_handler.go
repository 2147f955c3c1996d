package handler

import (
	"ratethem-backend/internal/service"
	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratingService *service.RatingService
}

func NewRatingHandler(ratingService *service.RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
	}
}

// CreateRatingRequest is a rating by the caller; the author comes from the token
type CreateRatingRequest struct {
	ItemID  uint     `json:"item_id" binding:"required"`
	Value   *float64 `json:"value" binding:"required,gte=0,lte=5"`
	Comment *string  `json:"comment" binding:"omitempty,max=2000"`
}

type UpdateRatingRequest struct {
	Value   *float64 `json:"value" binding:"omitempty,gte=0,lte=5"`
	Comment *string  `json:"comment" binding:"omitempty,max=2000"`
}

// CreateRating records the caller's rating of an item
func (h *RatingHandler) CreateRating(c *gin.Context) {
	var req CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rating, err := h.ratingService.CreateRating(c.Request.Context(), actorFrom(c), service.RatingInput{
		ItemID:  req.ItemID,
		Value:   *req.Value,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, rating)
}

// GetAllRatings lists every rating (admin only)
func (h *RatingHandler) GetAllRatings(c *gin.Context) {
	ratings, err := h.ratingService.ListRatings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, ratings)
}

// GetRating retrieves a rating by ID
func (h *RatingHandler) GetRating(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rating, err := h.ratingService.GetRating(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, rating)
}

// GetMyRating returns the caller's rating of the item in the path
func (h *RatingHandler) GetMyRating(c *gin.Context) {
	itemID, ok := parseID(c, "id")
	if !ok {
		return
	}

	rating, err := h.ratingService.MyRating(c.Request.Context(), actorFrom(c), itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, rating)
}

// UpdateRating changes a rating (author or admin)
func (h *RatingHandler) UpdateRating(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rating, err := h.ratingService.UpdateRating(c.Request.Context(), actorFrom(c), id, service.RatingUpdate{
		Value:   req.Value,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, rating)
}

// RemoveComment clears a rating's comment (author or admin)
func (h *RatingHandler) RemoveComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rating, err := h.ratingService.RemoveComment(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, rating)
}

// DeleteRating removes a rating (author or admin)
func (h *RatingHandler) DeleteRating(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.ratingService.DeleteRating(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// GetStats returns the global rating summary
func (h *RatingHandler) GetStats(c *gin.Context) {
	stats, err := h.ratingService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GetDistribution returns rating counts per value
func (h *RatingHandler) GetDistribution(c *gin.Context) {
	distribution, err := h.ratingService.Distribution(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, distribution)
}

// GetRecent returns the latest ratings, up to ?limit=
func (h *RatingHandler) GetRecent(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	recent, err := h.ratingService.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, recent)
}
