package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RenatoMoratti/finance-app/internal/services"
)

// SyncHandler handles synchronization requests.
type SyncHandler struct {
	orchestrator services.SyncOrchestrator
	reconciler   services.Reconciler
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(orchestrator services.SyncOrchestrator, reconciler services.Reconciler) *SyncHandler {
	return &SyncHandler{orchestrator: orchestrator, reconciler: reconciler}
}

// SyncConnection runs a full fetch-and-reconcile cycle for one connection.
func (h *SyncHandler) SyncConnection(c *gin.Context) {
	outcome, err := h.orchestrator.SyncConnection(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// GetHistory returns recent sync records, newest first.
func (h *SyncHandler) GetHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	history, err := h.reconciler.History(limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// GetLastSync returns the most recent sync record, or null when no sync has
// run yet.
func (h *SyncHandler) GetLastSync(c *gin.Context) {
	last, err := h.reconciler.LastSync()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"last_sync": last})
}
