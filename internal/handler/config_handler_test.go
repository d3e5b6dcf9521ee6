// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package handler

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/clamguard/backend/internal/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestConfigHandlerGetConfigMissingFileReturnsEmptyDoc(t *testing.T) {
	h := NewConfigHandler(filepath.Join(t.TempDir(), "settings.json"), logger.New())

	rec := doRequest(t, h.GetConfig, http.MethodGet, "/api/config", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env["success"])
	data := env["data"].(map[string]any)
	require.Empty(t, data)
}

func TestConfigHandlerPutThenGetRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "settings.json")
	h := NewConfigHandler(path, logger.New())

	putRec := doRequest(t, h.PutConfig, http.MethodPut, "/api/config", map[string]any{
		"scan_schedule": "daily",
		"retries":       3,
	})
	require.Equal(t, http.StatusOK, putRec.Code)

	getRec := doRequest(t, h.GetConfig, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, getRec.Code)
	env := decodeEnvelope(t, getRec)
	data := env["data"].(map[string]any)
	require.Equal(t, "daily", data["scan_schedule"])
	require.EqualValues(t, 3, data["retries"])
}
