// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/clamguard/backend/internal/history"
	"github.com/clamguard/backend/internal/pkg/logger"
	"github.com/clamguard/backend/internal/update"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct{}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args []string, onLine func(line string)) error {
	onLine("freshclam: nothing to do")
	return nil
}

func TestUpdateHandlerStartIsNonBlockingAndReportsRunning(t *testing.T) {
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	updater := update.New(&fakeExecutor{}, t.TempDir(), store)
	h := NewUpdateHandler(updater, store, t.TempDir(), logger.New())

	rec := doRequest(t, h.Start, http.MethodPost, "/api/update/start", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]any)
	require.Equal(t, true, data["started"])

	require.Eventually(t, func() bool {
		statusRec := doRequest(t, h.Status, http.MethodGet, "/api/update/status", nil)
		statusEnv := decodeEnvelope(t, statusRec)
		statusData := statusEnv["data"].(map[string]any)
		return statusData["running"] == false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUpdateHandlerStartRejectsConcurrentRun(t *testing.T) {
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	h := NewUpdateHandler(update.New(&fakeExecutor{}, t.TempDir(), store), store, t.TempDir(), logger.New())
	h.running = true

	rec := doRequest(t, h.Start, http.MethodPost, "/api/update/start", nil)

	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]any)
	require.Equal(t, false, data["started"])
}

func TestUpdateHandlerHistoryEmpty(t *testing.T) {
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	h := NewUpdateHandler(update.New(&fakeExecutor{}, t.TempDir(), store), store, t.TempDir(), logger.New())

	rec := doRequest(t, h.History, http.MethodGet, "/api/update/history", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]any)
	updates := data["updates"]
	require.Equal(t, []any{}, updates)
}
