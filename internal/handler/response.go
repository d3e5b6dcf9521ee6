// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package handler provides HTTP request handlers for the scan orchestrator's
// control plane.
package handler

import (
	"errors"
	"net/http"

	apperrors "github.com/clamguard/backend/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// businessCodes are error codes that represent an expected business-logic
// outcome rather than a malformed request or a server fault; per spec these
// are reported as HTTP 200 with success:false so clients don't need to
// special-case transport status for ordinary "can't do that right now"
// responses.
var businessCodes = map[string]bool{
	"TASK_NOT_FOUND":       true,
	"SCAN_IN_PROGRESS":     true,
	"NO_SCAN_IN_PROGRESS":  true,
	"THREAT_NOT_FOUND":     true,
	"QUARANTINE_NOT_FOUND": true,
}

func writeSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func writeError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if businessCodes[appErr.Code] {
			status = http.StatusOK
		}
		c.JSON(status, gin.H{"success": false, "error": gin.H{"code": appErr.Code, "message": appErr.Message}})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   gin.H{"code": "INTERNAL_ERROR", "message": err.Error()},
	})
}

func writeBadRequest(c *gin.Context, message string) {
	writeError(c, apperrors.NewInvalidInput(message))
}
