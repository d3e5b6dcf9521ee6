// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package handler

import (
	"os"
	"strconv"
	"time"

	"github.com/clamguard/backend/internal/history"
	apperrors "github.com/clamguard/backend/internal/pkg/errors"
	"github.com/clamguard/backend/internal/pkg/logger"
	"github.com/clamguard/backend/internal/quarantine"
	"github.com/gin-gonic/gin"
)

const threatListLimit = 200

// threatActionRequest is the body of POST /api/threats/:id/action.
type threatActionRequest struct {
	Action string `json:"action" binding:"required,oneof=quarantine delete ignore"`
}

// ThreatHandler lists detected threats and applies a disposition to one.
type ThreatHandler struct {
	store  history.Store
	vault  *quarantine.Vault
	logger logger.Logger
}

// NewThreatHandler creates a new threat handler.
func NewThreatHandler(store history.Store, vault *quarantine.Vault, log logger.Logger) *ThreatHandler {
	return &ThreatHandler{store: store, vault: vault, logger: log}
}

// List handles GET /api/threats?scan_id=.
func (h *ThreatHandler) List(c *gin.Context) {
	recs, err := h.store.ListThreats(c.Query("scan_id"), threatListLimit)
	if err != nil {
		writeError(c, apperrors.WrapDatabaseError(err))
		return
	}
	writeSuccess(c, gin.H{"threats": recs})
}

// Action handles POST /api/threats/:id/action.
func (h *ThreatHandler) Action(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		writeBadRequest(c, "invalid threat id")
		return
	}

	var req threatActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid action request: "+err.Error())
		return
	}

	threats, err := h.store.ListThreats("", 0)
	if err != nil {
		writeError(c, apperrors.WrapDatabaseError(err))
		return
	}
	var rec *history.ThreatRecord
	for i := range threats {
		if uint64(threats[i].ID) == id {
			rec = &threats[i]
			break
		}
	}
	if rec == nil {
		writeError(c, apperrors.ErrThreatNotFound)
		return
	}

	switch req.Action {
	case "quarantine":
		if err := h.quarantineThreat(rec); err != nil {
			writeError(c, apperrors.WrapQuarantineError(err))
			return
		}
	case "delete":
		if err := os.Remove(rec.FilePath); err != nil && !os.IsNotExist(err) {
			writeError(c, apperrors.WrapInternal(err, "failed to delete threat file"))
			return
		}
	case "ignore":
		// no filesystem action; just records the disposition below.
	}

	if err := h.store.SetThreatAction(uint(id), req.Action, time.Now()); err != nil {
		writeError(c, apperrors.WrapDatabaseError(err))
		return
	}

	h.logger.Info("Applied action %s to threat %d (%s)", req.Action, id, rec.FilePath)
	writeSuccess(c, gin.H{"id": id, "action": req.Action})
}

func (h *ThreatHandler) quarantineThreat(rec *history.ThreatRecord) error {
	info, err := os.Stat(rec.FilePath)
	if err != nil {
		return err
	}

	uid, err := h.vault.Quarantine(rec.FilePath, rec.VirusName, rec.ScanID, info.Size())
	if err != nil {
		return err
	}

	return h.store.RecordQuarantine(&history.QuarantineRecord{
		UUID:            uid,
		ThreatID:        &rec.ID,
		QuarantinePath:  uid,
		OriginalPath:    rec.FilePath,
		QuarantinedTime: time.Now(),
		FileSize:        info.Size(),
	})
}
