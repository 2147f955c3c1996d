package handler

import (
	"net/http"
	"strconv"
	"strings"

	"ratethem-backend/internal/repository"
	"ratethem-backend/internal/service"
	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	itemService *service.ItemService
}

func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
	}
}

type CreateItemRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url" binding:"omitempty,max=500"`
	CategoryIDs []uint   `json:"category_ids"`
	Tags        []string `json:"tags" binding:"omitempty,dive,max=100"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=500"`
}

type SetCategoriesRequest struct {
	CategoryIDs []uint `json:"category_ids"`
}

type SetTagsRequest struct {
	Tags []string `json:"tags" binding:"omitempty,dive,max=100"`
}

// GetAllItems lists items, optionally filtered by ?category_id= and ?tags=
func (h *ItemHandler) GetAllItems(c *gin.Context) {
	var filter repository.ItemFilter

	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid category_id")
			return
		}
		filter.CategoryID = uint(id)
	}

	for _, raw := range c.QueryArray("tags") {
		filter.Tags = append(filter.Tags, strings.Split(raw, ",")...)
	}

	items, err := h.itemService.ListItems(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, items)
}

// GetItem retrieves an item with its rating aggregate
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.itemService.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// GetItemRatings lists the ratings of an item
func (h *ItemHandler) GetItemRatings(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ratings, err := h.itemService.ListItemRatings(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, ratings)
}

// CreateItem creates an item (any authenticated user)
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), actorFrom(c), service.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryIDs: req.CategoryIDs,
		Tags:        req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, item)
}

// UpdateItem updates an item's fields (admin only)
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.itemService.UpdateItem(c.Request.Context(), actorFrom(c), id, service.ItemUpdate{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// SetCategories replaces an item's categories (admin only)
func (h *ItemHandler) SetCategories(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req SetCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.itemService.SetCategories(c.Request.Context(), id, req.CategoryIDs); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// SetTags replaces an item's tags, creating new tag names (admin only)
func (h *ItemHandler) SetTags(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req SetTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.itemService.SetTags(c.Request.Context(), id, req.Tags); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// DeleteItem removes an item and its ratings (admin only)
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.itemService.DeleteItem(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
