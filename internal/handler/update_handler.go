// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package handler

import (
	"context"
	"sync"

	"github.com/clamguard/backend/internal/history"
	apperrors "github.com/clamguard/backend/internal/pkg/errors"
	"github.com/clamguard/backend/internal/pkg/logger"
	"github.com/clamguard/backend/internal/sigver"
	"github.com/clamguard/backend/internal/update"
	"github.com/gin-gonic/gin"
)

const updateHistoryPageSize = 50

// UpdateHandler drives the freshclam subprocess (C11) in the background so
// the HTTP request returns immediately, matching the sub-100ms
// responsiveness requirement of the rest of the control plane.
type UpdateHandler struct {
	updater      *update.Updater
	store        history.Store
	signatureDir string
	logger       logger.Logger

	mu      sync.Mutex
	running bool
	last    *update.Result
}

// NewUpdateHandler creates a new update handler.
func NewUpdateHandler(updater *update.Updater, store history.Store, signatureDir string, log logger.Logger) *UpdateHandler {
	return &UpdateHandler{updater: updater, store: store, signatureDir: signatureDir, logger: log}
}

// Start handles POST /api/update/start.
func (h *UpdateHandler) Start(c *gin.Context) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		writeSuccess(c, gin.H{"started": false, "reason": "update already running"})
		return
	}
	h.running = true
	h.mu.Unlock()

	go func() {
		res, err := h.updater.Run(context.Background())
		h.mu.Lock()
		h.running = false
		if err == nil {
			h.last = res
		}
		h.mu.Unlock()
		if err != nil {
			h.logger.Error("signature update failed: %v", err)
		}
	}()

	writeSuccess(c, gin.H{"started": true})
}

// Status handles GET /api/update/status.
func (h *UpdateHandler) Status(c *gin.Context) {
	h.mu.Lock()
	running, last := h.running, h.last
	h.mu.Unlock()

	data := gin.H{"running": running}
	if last != nil {
		data["last_result"] = last
	}
	writeSuccess(c, data)
}

// Version handles GET /api/update/version.
func (h *UpdateHandler) Version(c *gin.Context) {
	writeSuccess(c, gin.H{"versions": sigver.Probe(h.signatureDir)})
}

// History handles GET /api/update/history.
func (h *UpdateHandler) History(c *gin.Context) {
	recs, err := h.store.RecentUpdates(updateHistoryPageSize)
	if err != nil {
		writeError(c, apperrors.WrapDatabaseError(err))
		return
	}
	writeSuccess(c, gin.H{"updates": recs})
}
