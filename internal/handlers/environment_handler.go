package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RenatoMoratti/finance-app/internal/config"
	"github.com/RenatoMoratti/finance-app/internal/database"
	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
)

// EnvironmentHandler exposes the active database environment and the
// prod/dev switch.
type EnvironmentHandler struct {
	manager *database.Manager
}

// NewEnvironmentHandler creates a new EnvironmentHandler.
func NewEnvironmentHandler(manager *database.Manager) *EnvironmentHandler {
	return &EnvironmentHandler{manager: manager}
}

// SwitchEnvironmentRequest represents the request payload for switching environments
type SwitchEnvironmentRequest struct {
	Environment string `json:"environment" binding:"required,environment"`
}

// GetEnvironment returns the active environment and database path.
func (h *EnvironmentHandler) GetEnvironment(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"environment":   h.manager.Environment(),
		"database_path": h.manager.DatabasePath(),
	})
}

// SwitchEnvironment rebinds the API to the other environment's database.
func (h *EnvironmentHandler) SwitchEnvironment(c *gin.Context) {
	var req SwitchEnvironmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if !config.ValidEnvironment(req.Environment) {
		respondWithError(c, apperrors.ErrUnknownEnvironment)
		return
	}

	if err := h.manager.Switch(req.Environment); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"environment": h.manager.Environment()})
}
