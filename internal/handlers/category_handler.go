package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/services"
)

// CategoryHandler handles user-category requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Subcategory string `json:"subcategory" binding:"max=120"`
	Type        string `json:"type" binding:"required,transaction_type"`
	Description string `json:"description" binding:"max=500"`
	Color       string `json:"color" binding:"omitempty,hex_color"`
	Icon        string `json:"icon" binding:"max=60"`
}

// UpdateCategoryRequest represents the request payload for updating a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=120"`
	Subcategory *string `json:"subcategory" binding:"omitempty,max=120"`
	Type        *string `json:"type" binding:"omitempty,transaction_type"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Color       *string `json:"color" binding:"omitempty,hex_color"`
	Icon        *string `json:"icon" binding:"omitempty,max=60"`
	IsActive    *bool   `json:"is_active"`
}

// ListCategories returns categories, optionally filtered by type.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	categories, err := h.categoryService.GetCategories(c.Query("type"), activeOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListCategoriesGrouped returns active categories grouped by name.
func (h *CategoryHandler) ListCategoriesGrouped(c *gin.Context) {
	grouped, err := h.categoryService.GetCategoriesGrouped(c.Query("type"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": grouped})
}

// CreateCategory creates a new category.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(
		req.Name, req.Subcategory, models.TransactionType(req.Type), req.Description, req.Color, req.Icon)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory applies a partial update to a category.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.CategoryUpdate{
		Name:        req.Name,
		Subcategory: req.Subcategory,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    req.IsActive,
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		update.TransactionType = &t
	}

	category, err := h.categoryService.UpdateCategory(id, update)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory removes a category.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.categoryService.DeleteCategory(id); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// PopulateDefaults seeds the starter taxonomy into an empty category table.
func (h *CategoryHandler) PopulateDefaults(c *gin.Context) {
	inserted, err := h.categoryService.PopulateDefaults()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}
