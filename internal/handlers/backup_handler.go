package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RenatoMoratti/finance-app/internal/backup"
)

// BackupHandler handles backup requests.
type BackupHandler struct {
	runner *backup.Runner
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(runner *backup.Runner) *BackupHandler {
	return &BackupHandler{runner: runner}
}

// RunBackup takes a snapshot of the active database. With force=true the
// recent-backup rate limit is bypassed.
func (h *BackupHandler) RunBackup(c *gin.Context) {
	force := c.Query("force") == "true"
	result, err := h.runner.Run(force)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListBackups returns the backups for the active environment.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	backups, err := h.runner.List()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": backups})
}
