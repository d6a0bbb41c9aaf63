package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/services"
)

// MappingHandler handles category-mapping requests.
type MappingHandler struct {
	mappingService services.MappingServicer
}

// NewMappingHandler creates a new MappingHandler.
func NewMappingHandler(mappingService services.MappingServicer) *MappingHandler {
	return &MappingHandler{mappingService: mappingService}
}

// UpdateMappingRequest represents the request payload for classifying a mapping
type UpdateMappingRequest struct {
	SourceCategory  string `json:"source_category" binding:"required,max=200"`
	TransactionType string `json:"transaction_type" binding:"omitempty,transaction_type"`
	UserCategory    string `json:"user_category" binding:"max=120"`
	UserSubcategory string `json:"user_subcategory" binding:"max=120"`
}

// DeleteMappingRequest represents the request payload for removing a mapping
type DeleteMappingRequest struct {
	SourceCategory  string `json:"source_category" binding:"required,max=200"`
	TransactionType string `json:"transaction_type" binding:"omitempty,transaction_type"`
}

// ListMappings returns all category mappings.
func (h *MappingHandler) ListMappings(c *gin.Context) {
	mappings, err := h.mappingService.GetMappings()
	if err != nil {
		respondWithError(c, err)
		return
	}
	unmapped, err := h.mappingService.CountUnmapped()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mappings": mappings, "unmapped": unmapped})
}

// ReconcileMappings registers any source categories observed on transactions
// that do not have a mapping row yet.
func (h *MappingHandler) ReconcileMappings(c *gin.Context) {
	inserted, err := h.mappingService.ReconcileMappings()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_mappings": inserted})
}

// UpdateMapping classifies a mapping, creating the row if needed.
func (h *MappingHandler) UpdateMapping(c *gin.Context) {
	var req UpdateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	err := h.mappingService.UpdateMapping(req.SourceCategory, req.TransactionType, req.UserCategory, req.UserSubcategory)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// DeleteMapping removes a mapping.
func (h *MappingHandler) DeleteMapping(c *gin.Context) {
	var req DeleteMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.mappingService.DeleteMapping(req.SourceCategory, req.TransactionType); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
