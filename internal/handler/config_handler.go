// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package handler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/clamguard/backend/internal/pkg/errors"
	"github.com/clamguard/backend/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ConfigHandler reads and writes the daemon's settings file: a single JSON
// object the admin UI treats as an opaque document.
type ConfigHandler struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
}

// NewConfigHandler creates a new config handler rooted at settingsPath.
func NewConfigHandler(settingsPath string, log logger.Logger) *ConfigHandler {
	return &ConfigHandler{path: settingsPath, logger: log}
}

// GetConfig handles GET /api/config.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	raw, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		writeSuccess(c, gin.H{})
		return
	}
	if err != nil {
		writeError(c, apperrors.WrapInternal(err, "failed to read settings file"))
		return
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		writeError(c, apperrors.WrapInternal(err, "settings file is not valid JSON"))
		return
	}
	writeSuccess(c, doc)
}

// PutConfig handles PUT /api/config. The body replaces the settings
// document wholesale; writes are atomic via a temp-file rename, the same
// pattern the quarantine vault uses for its payload moves.
func (h *ConfigHandler) PutConfig(c *gin.Context) {
	var doc map[string]any
	if err := c.ShouldBindJSON(&doc); err != nil {
		writeBadRequest(c, "invalid settings document: "+err.Error())
		return
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		writeError(c, apperrors.WrapInternal(err, "failed to encode settings document"))
		return
	}

	h.mu.Lock()
	err = writeFileAtomic(h.path, encoded)
	h.mu.Unlock()
	if err != nil {
		writeError(c, apperrors.WrapInternal(err, "failed to write settings file"))
		return
	}

	h.logger.Info("Settings file updated at %s", h.path)
	writeSuccess(c, doc)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
