package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/pluggy"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// ConnectionHandler manages registered aggregator connections.
type ConnectionHandler struct {
	store  *pluggy.ConnectionStore
	client *pluggy.Client
}

// NewConnectionHandler creates a new ConnectionHandler.
func NewConnectionHandler(store *pluggy.ConnectionStore, client *pluggy.Client) *ConnectionHandler {
	return &ConnectionHandler{store: store, client: client}
}

// RegisterConnectionRequest represents the request payload for registering a connection
type RegisterConnectionRequest struct {
	ItemID    string `json:"item_id" binding:"required"`
	BankName  string `json:"bank_name" binding:"max=120"`
	DataSince string `json:"data_since" binding:"omitempty,datetime=2006-01-02"`
}

// ListConnections returns all registered connections.
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	connections, err := h.store.List()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": connections})
}

// RegisterConnection stores a new connection.
func (h *ConnectionHandler) RegisterConnection(c *gin.Context) {
	var req RegisterConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	conn := pluggy.Connection{
		ItemID:    req.ItemID,
		BankName:  req.BankName,
		Status:    "active",
		DataSince: req.DataSince,
		CreatedAt: timefmt.Now(),
	}
	if err := h.store.Save(conn); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"connection": conn})
}

// DeleteConnection removes a connection. Synced records remain in the store.
func (h *ConnectionHandler) DeleteConnection(c *gin.Context) {
	err := h.store.Delete(c.Param("itemId"))
	if errors.Is(err, pluggy.ErrConnectionNotFound) {
		respondWithError(c, apperrors.ErrConnectionNotFound)
		return
	}
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CreateConnectToken issues an aggregator connect token, used by the widget
// to repair or create a bank link.
func (h *ConnectionHandler) CreateConnectToken(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.client.Authenticate(ctx); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrAggregatorUnavailable, err))
		return
	}

	token, err := h.client.CreateConnectToken(ctx, c.Query("item_id"))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrAggregatorUnavailable, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}
