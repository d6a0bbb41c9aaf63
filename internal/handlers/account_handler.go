package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the request payload for creating a manual account
type CreateAccountRequest struct {
	Name         string  `json:"name" binding:"required,max=120"`
	Type         string  `json:"type" binding:"required,max=60"`
	Subtype      string  `json:"subtype" binding:"max=60"`
	Balance      float64 `json:"balance"`
	CurrencyCode string  `json:"currency_code" binding:"omitempty,len=3"`
}

// UpdateAccountRequest represents the request payload for updating a manual account
type UpdateAccountRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=120"`
	Type         *string  `json:"type" binding:"omitempty,max=60"`
	Subtype      *string  `json:"subtype" binding:"omitempty,max=60"`
	Balance      *float64 `json:"balance"`
	CurrencyCode *string  `json:"currency_code" binding:"omitempty,len=3"`
}

// ListAccounts returns all accounts.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accountService.GetAccounts()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// GetAccount returns a single account by ID.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}

// ListAccountTypes returns the distinct account types in use.
func (h *AccountHandler) ListAccountTypes(c *gin.Context) {
	types, err := h.accountService.GetAccountTypes()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"types": types})
}

// CreateAccount creates a manual account.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.CreateManualAccount(req.Name, req.Type, req.Subtype, req.Balance, req.CurrencyCode)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// UpdateAccount updates a manual account.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.UpdateManualAccount(c.Param("id"), services.AccountUpdate{
		Name:         req.Name,
		Type:         req.Type,
		Subtype:      req.Subtype,
		Balance:      req.Balance,
		CurrencyCode: req.CurrencyCode,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount deletes a manual account and its transactions.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	removed, err := h.accountService.DeleteManualAccount(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted_transactions": removed})
}
