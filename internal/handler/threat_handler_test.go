// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/clamguard/backend/internal/history"
	"github.com/clamguard/backend/internal/pkg/logger"
	"github.com/clamguard/backend/internal/quarantine"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestThreatHandler(t *testing.T) (*ThreatHandler, history.Store) {
	t.Helper()
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	vault := quarantine.New(filepath.Join(t.TempDir(), "vault"))
	return NewThreatHandler(store, vault, logger.New()), store
}

func TestThreatHandlerActionDeleteRemovesFile(t *testing.T) {
	h, store := newTestThreatHandler(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "infected.bin")
	require.NoError(t, os.WriteFile(target, []byte("eicar"), 0o644))

	id, err := store.RecordThreat(&history.ThreatRecord{ScanID: "scan-1", FilePath: target, VirusName: "Test.Virus"})
	require.NoError(t, err)

	rec := doRequest(t, func(c *gin.Context) {
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		h.Action(c)
	}, http.MethodPost, "/api/threats/1/action", map[string]any{"action": "delete"})

	_ = id
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env["success"])
	_, statErr := os.Stat(target)
	require.True(t, os.IsNotExist(statErr))
}

func TestThreatHandlerActionUnknownIDIsBusinessError(t *testing.T) {
	h, _ := newTestThreatHandler(t)

	rec := doRequest(t, func(c *gin.Context) {
		c.Params = gin.Params{{Key: "id", Value: "999"}}
		h.Action(c)
	}, http.MethodPost, "/api/threats/999/action", map[string]any{"action": "ignore"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, false, env["success"])
	errBody := env["error"].(map[string]any)
	require.Equal(t, "THREAT_NOT_FOUND", errBody["code"])
}

func TestThreatHandlerListFiltersByScanID(t *testing.T) {
	h, store := newTestThreatHandler(t)
	_, err := store.RecordThreat(&history.ThreatRecord{ScanID: "scan-a", FilePath: "/a", VirusName: "X"})
	require.NoError(t, err)
	_, err = store.RecordThreat(&history.ThreatRecord{ScanID: "scan-b", FilePath: "/b", VirusName: "Y"})
	require.NoError(t, err)

	rec := httptestQuery(t, h.List, "/api/threats", "scan_id", "scan-a")

	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]any)
	threats := data["threats"].([]any)
	require.Len(t, threats, 1)
}
