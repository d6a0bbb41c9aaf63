package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/services"
)

// SplitHandler handles account-split and division-settings requests.
type SplitHandler struct {
	splitService services.SplitServicer
}

// NewSplitHandler creates a new SplitHandler.
func NewSplitHandler(splitService services.SplitServicer) *SplitHandler {
	return &SplitHandler{splitService: splitService}
}

// UpsertSplitRequest represents the request payload for setting an account split
type UpsertSplitRequest struct {
	User1Percent float64  `json:"user1_percent" binding:"split_percent"`
	User2Percent *float64 `json:"user2_percent" binding:"omitempty,split_percent"`
}

// DivisionSettingsRequest represents the request payload for renaming the split users
type DivisionSettingsRequest struct {
	User1Name string `json:"user1_name" binding:"required,max=60"`
	User2Name string `json:"user2_name" binding:"required,max=60"`
}

// ListAccountSplits returns every account with its effective split.
func (h *SplitHandler) ListAccountSplits(c *gin.Context) {
	accounts, err := h.splitService.GetAccountsWithSplits()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// UpsertSplit sets the split for an account.
func (h *SplitHandler) UpsertSplit(c *gin.Context) {
	var req UpsertSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	split, err := h.splitService.UpsertSplit(c.Param("id"), req.User1Percent, req.User2Percent)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"split": split})
}

// GetDivisionSettings returns the split user names.
func (h *SplitHandler) GetDivisionSettings(c *gin.Context) {
	settings, err := h.splitService.GetDivisionSettings()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateDivisionSettings renames the split users.
func (h *SplitHandler) UpdateDivisionSettings(c *gin.Context) {
	var req DivisionSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.splitService.UpdateDivisionSettings(req.User1Name, req.User2Name); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
