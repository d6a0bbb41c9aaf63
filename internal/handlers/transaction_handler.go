package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/pagination"
	"github.com/RenatoMoratti/finance-app/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// ListTransactionsRequest represents the query parameters for listing transactions
type ListTransactionsRequest struct {
	pagination.PageRequest
	AccountIDs    string `form:"account_ids"`
	Type          string `form:"type" binding:"omitempty,transaction_type"`
	Verified      *bool  `form:"verified"`
	Ignored       *bool  `form:"ignored"`
	ConflictsOnly bool   `form:"conflicts_only"`
	FromDate      string `form:"from_date"`
	ToDate        string `form:"to_date"`
	Search        string `form:"search" binding:"max=200"`
}

// CreateTransactionRequest represents the request payload for creating a manual transaction
type CreateTransactionRequest struct {
	AccountID   string  `json:"account_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"required,max=500"`
	Date        string  `json:"date"`
	Category    string  `json:"category" binding:"max=120"`
	Type        string  `json:"type" binding:"omitempty,transaction_type"`
}

// UpdateTransactionRequest represents the request payload for editing a transaction
type UpdateTransactionRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"required,max=500"`
	Category    string  `json:"category" binding:"max=120"`
	Date        string  `json:"date" binding:"required"`
	AccountID   string  `json:"account_id"`
	Type        string  `json:"type" binding:"omitempty,transaction_type"`
}

// FlagRequest represents a boolean flag toggle payload
type FlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// UserCategoryRequest represents a user classification payload
type UserCategoryRequest struct {
	Category    string `json:"category" binding:"max=120"`
	Subcategory string `json:"subcategory" binding:"max=120"`
}

// SplitOverrideRequest represents a per-transaction split payload
type SplitOverrideRequest struct {
	User1Percent float64  `json:"user1_percent" binding:"split_percent"`
	User2Percent *float64 `json:"user2_percent" binding:"omitempty,split_percent"`
}

// ListTransactions returns a filtered, paginated transaction list.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{
		Verified:      req.Verified,
		Ignored:       req.Ignored,
		ConflictsOnly: req.ConflictsOnly,
		FromDate:      req.FromDate,
		ToDate:        req.ToDate,
		Search:        req.Search,
	}
	if req.AccountIDs != "" {
		filter.AccountIDs = strings.Split(req.AccountIDs, ",")
	}
	if req.Type != "" {
		t := models.TransactionType(req.Type)
		filter.Type = &t
	}

	page, err := h.transactionService.GetTransactions(req.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetTransaction returns a single transaction by ID.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transaction, err := h.transactionService.GetTransactionByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// CreateTransaction creates a manual transaction.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateManualTransaction(
		req.AccountID, req.Amount, req.Description, req.Date, req.Category, models.TransactionType(req.Type))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransaction applies a manual edit to a transaction.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Param("id"), services.TransactionUpdate{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
		AccountID:   req.AccountID,
		Type:        models.TransactionType(req.Type),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a manual transaction.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.transactionService.DeleteTransaction(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SetVerified toggles the verified flag.
func (h *TransactionHandler) SetVerified(c *gin.Context) {
	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := h.transactionService.SetVerified(c.Param("id"), *req.Value); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": *req.Value})
}

// SetIgnored toggles the ignored flag.
func (h *TransactionHandler) SetIgnored(c *gin.Context) {
	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := h.transactionService.SetIgnored(c.Param("id"), *req.Value); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ignored": *req.Value})
}

// SetUserCategory assigns the user classification.
func (h *TransactionHandler) SetUserCategory(c *gin.Context) {
	var req UserCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := h.transactionService.SetUserCategory(c.Param("id"), req.Category, req.Subcategory); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// SetSplitOverride stores a per-transaction split pair.
func (h *TransactionHandler) SetSplitOverride(c *gin.Context) {
	var req SplitOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := h.transactionService.SetSplitOverride(c.Param("id"), req.User1Percent, req.User2Percent); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// GetStatistics returns aggregate transaction statistics.
func (h *TransactionHandler) GetStatistics(c *gin.Context) {
	stats, err := h.transactionService.Statistics()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}
