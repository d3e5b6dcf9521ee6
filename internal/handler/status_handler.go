// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package handler

import (
	"time"

	"github.com/clamguard/backend/internal/clamav"
	"github.com/clamguard/backend/internal/pkg/logger"
	"github.com/clamguard/backend/internal/scanservice"
	"github.com/clamguard/backend/internal/sigver"
	"github.com/gin-gonic/gin"
)

// StatusHandler serves GET /health and GET /api/status.
type StatusHandler struct {
	mgr          *clamav.Manager
	scanSvc      *scanservice.Service
	signatureDir string
	startedAt    time.Time
	logger       logger.Logger
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(mgr *clamav.Manager, scanSvc *scanservice.Service, signatureDir string, log logger.Logger) *StatusHandler {
	return &StatusHandler{
		mgr:          mgr,
		scanSvc:      scanSvc,
		signatureDir: signatureDir,
		startedAt:    time.Now(),
		logger:       log,
	}
}

// Health handles GET /health.
func (h *StatusHandler) Health(c *gin.Context) {
	writeSuccess(c, gin.H{"status": "ok"})
}

// Status handles GET /api/status.
func (h *StatusHandler) Status(c *gin.Context) {
	state, errMsg := h.mgr.GetState()

	data := gin.H{
		"engine_state":       state.String(),
		"scanning":           h.scanSvc.IsScanning(),
		"uptime_seconds":     int64(time.Since(h.startedAt).Seconds()),
		"signature_versions": sigver.Probe(h.signatureDir),
	}
	if errMsg != "" {
		data["engine_error"] = errMsg
	}
	if free, err := sigver.DiskFree(h.signatureDir); err == nil {
		data["signature_dir_free_bytes"] = free
	}
	if scanID := h.scanSvc.GetCurrentScanID(); scanID != "" {
		data["active_scan_id"] = scanID
	}

	writeSuccess(c, data)
}
