// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package handler

import (
	"errors"

	"github.com/clamguard/backend/internal/history"
	apperrors "github.com/clamguard/backend/internal/pkg/errors"
	"github.com/clamguard/backend/internal/pkg/logger"
	"github.com/clamguard/backend/internal/mounts"
	"github.com/clamguard/backend/internal/pkg/validator"
	"github.com/clamguard/backend/internal/scanservice"
	"github.com/clamguard/backend/internal/task"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const historyPageSize = 50

// defaultScanOptions matches the native engine's full detection surface;
// callers have no knob to narrow it in this API version.
var defaultScanOptions = task.ScanOptions{
	ScanArchive: true,
	ScanPDF:     true,
	ScanELF:     true,
	ScanMail:    true,
	Heuristics:  true,
}

// scanStartRequest is the body of POST /api/scan/start.
type scanStartRequest struct {
	ScanType string   `json:"scan_type" binding:"required,oneof=full custom"`
	Paths    []string `json:"paths"`
}

// ScanHandler handles the scan lifecycle endpoints.
type ScanHandler struct {
	scanSvc *scanservice.Service
	store   history.Store
	logger  logger.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scanSvc *scanservice.Service, store history.Store, log logger.Logger) *ScanHandler {
	return &ScanHandler{scanSvc: scanSvc, store: store, logger: log}
}

// StartScan handles POST /api/scan/start.
func (h *ScanHandler) StartScan(c *gin.Context) {
	var req scanStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid scan request: "+err.Error())
		return
	}

	paths := req.Paths
	if req.ScanType == "full" {
		expanded, err := mounts.ExpandFullScan()
		if err != nil {
			writeError(c, apperrors.WrapInternal(err, "failed to expand full-scan mount points"))
			return
		}
		paths = expanded
	}
	if len(paths) == 0 {
		writeBadRequest(c, "custom scan requires at least one path")
		return
	}
	if req.ScanType == "custom" {
		if err := validator.ValidateScanPaths(paths); err != nil {
			writeBadRequest(c, err.Error())
			return
		}
	}

	scanID := uuid.New().String()
	taskID, err := h.scanSvc.StartScan(scanID, paths, task.PriorityNormal, defaultScanOptions)
	if err != nil {
		if errors.Is(err, scanservice.ErrNoPathExists) {
			writeBadRequest(c, err.Error())
			return
		}
		writeError(c, apperrors.WrapInternal(err, "failed to start scan"))
		return
	}

	h.logger.Info("Started scan %s (task %s, type %s)", scanID, taskID, req.ScanType)
	writeSuccess(c, gin.H{"scan_id": scanID, "task_id": taskID})
}

// StopScan handles POST /api/scan/stop.
func (h *ScanHandler) StopScan(c *gin.Context) {
	scanID := h.scanSvc.GetCurrentScanID()
	if scanID == "" {
		writeError(c, apperrors.ErrNoScanInProgress)
		return
	}

	if err := h.scanSvc.StopScan(scanID); err != nil {
		if errors.Is(err, scanservice.ErrNoActiveScan) {
			writeError(c, apperrors.ErrNoScanInProgress)
			return
		}
		writeError(c, apperrors.WrapInternal(err, "failed to stop scan"))
		return
	}

	h.logger.Info("Stopped scan %s", scanID)
	writeSuccess(c, gin.H{"scan_id": scanID, "status": "stopped"})
}

// Status handles GET /api/scan/status: a live snapshot if a scan is active,
// otherwise the most recent terminal record.
func (h *ScanHandler) Status(c *gin.Context) {
	if active := h.scanSvc.GetCurrentScanProgress(); active != nil {
		writeSuccess(c, gin.H{
			"scan_id":   active.ScanID,
			"status":    active.Status,
			"progress":  active.Progress,
			"started":   active.StartTime,
			"is_active": true,
		})
		return
	}

	recent, err := h.store.RecentScans(1)
	if err != nil {
		writeError(c, apperrors.WrapDatabaseError(err))
		return
	}
	if len(recent) == 0 {
		writeSuccess(c, gin.H{"is_active": false})
		return
	}
	writeSuccess(c, gin.H{"is_active": false, "last_scan": recent[0]})
}

// History handles GET /api/scan/history: the last 50 records.
func (h *ScanHandler) History(c *gin.Context) {
	recs, err := h.store.RecentScans(historyPageSize)
	if err != nil {
		writeError(c, apperrors.WrapDatabaseError(err))
		return
	}
	writeSuccess(c, gin.H{"scans": recs})
}
