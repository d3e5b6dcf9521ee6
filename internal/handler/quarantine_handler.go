// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package handler

import (
	"os"
	"time"

	"github.com/clamguard/backend/internal/history"
	apperrors "github.com/clamguard/backend/internal/pkg/errors"
	"github.com/clamguard/backend/internal/pkg/logger"
	"github.com/clamguard/backend/internal/quarantine"
	"github.com/gin-gonic/gin"
)

// quarantineCleanupRequest is the body of POST /api/quarantine/cleanup.
type quarantineCleanupRequest struct {
	Days int `json:"days" binding:"required,min=0"`
}

// QuarantineHandler exposes the vault's list/restore/delete/cleanup
// operations over HTTP.
type QuarantineHandler struct {
	vault  *quarantine.Vault
	store  history.Store
	logger logger.Logger
}

// NewQuarantineHandler creates a new quarantine handler.
func NewQuarantineHandler(vault *quarantine.Vault, store history.Store, log logger.Logger) *QuarantineHandler {
	return &QuarantineHandler{vault: vault, store: store, logger: log}
}

// List handles GET /api/quarantine.
func (h *QuarantineHandler) List(c *gin.Context) {
	entries, err := h.vault.List()
	if err != nil {
		writeError(c, apperrors.WrapQuarantineError(err))
		return
	}
	writeSuccess(c, gin.H{"entries": entries})
}

// Restore handles POST /api/quarantine/:id/restore.
func (h *QuarantineHandler) Restore(c *gin.Context) {
	id := c.Param("id")

	originalPath, err := h.vault.Restore(id)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(c, apperrors.ErrQuarantineNotFound)
			return
		}
		writeError(c, apperrors.WrapQuarantineError(err))
		return
	}

	if err := h.store.MarkQuarantineRestored(id, time.Now()); err != nil {
		h.logger.Error("quarantine %s restored on disk but history update failed: %v", id, err)
	}

	h.logger.Info("Restored quarantine entry %s to %s", id, originalPath)
	writeSuccess(c, gin.H{"uuid": id, "restored_to": originalPath})
}

// Delete handles DELETE /api/quarantine/:id.
func (h *QuarantineHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.vault.Delete(id); err != nil {
		if os.IsNotExist(err) {
			writeError(c, apperrors.ErrQuarantineNotFound)
			return
		}
		writeError(c, apperrors.WrapQuarantineError(err))
		return
	}

	if err := h.store.DeleteQuarantineRecord(id); err != nil {
		h.logger.Error("quarantine %s deleted from vault but history row remains: %v", id, err)
	}

	h.logger.Info("Deleted quarantine entry %s", id)
	writeSuccess(c, gin.H{"uuid": id, "deleted": true})
}

// Cleanup handles POST /api/quarantine/cleanup.
func (h *QuarantineHandler) Cleanup(c *gin.Context) {
	var req quarantineCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid cleanup request: "+err.Error())
		return
	}

	count, freedBytes, err := h.vault.Cleanup(req.Days)
	if err != nil {
		writeError(c, apperrors.WrapQuarantineError(err))
		return
	}

	h.logger.Info("Quarantine cleanup removed %d entries (%d bytes, older than %d days)", count, freedBytes, req.Days)
	writeSuccess(c, gin.H{"removed": count, "freed_bytes": freedBytes})
}
