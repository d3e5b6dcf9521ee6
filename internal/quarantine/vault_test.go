// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package quarantine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultQuarantineAndRestoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "t.bin")
	content := []byte("threatening-bytes")
	require.NoError(t, os.WriteFile(src, content, 0o644))

	v := New(filepath.Join(root, "vault"))
	id, err := v.Quarantine(src, "X", "scan-1", int64(len(content)))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "original path must be gone after quarantine")

	entries, err := v.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "X", entries[0].VirusName)
	assert.Equal(t, src, entries[0].OriginalPath)

	restoredPath, err := v.Restore(id)
	require.NoError(t, err)
	assert.Equal(t, src, restoredPath)

	got, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = os.Stat(filepath.Join(root, "vault", "metadata", id+".json"))
	assert.True(t, os.IsNotExist(err), "sidecar must be removed after restore")
}

func TestVaultDeleteRemovesBothArtifacts(t *testing.T) {
	root := t.TempDir()
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "t.bin")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	v := New(filepath.Join(root, "vault"))
	id, err := v.Quarantine(src, "X", "scan-1", 1)
	require.NoError(t, err)

	require.NoError(t, v.Delete(id))

	_, err = os.Stat(filepath.Join(root, "vault", "files", id))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "vault", "metadata", id+".json"))
	assert.True(t, os.IsNotExist(err))

	entries, err := v.List()
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, id, e.UUID)
	}
}

func TestVaultRestoreFailsWhenOriginalDirGone(t *testing.T) {
	root := t.TempDir()
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "t.bin")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	v := New(filepath.Join(root, "vault"))
	id, err := v.Quarantine(src, "X", "scan-1", 1)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(srcDir))

	_, err = v.Restore(id)
	assert.Error(t, err)

	// the vault must not have lost the payload on a failed restore
	_, statErr := os.Stat(filepath.Join(root, "vault", "files", id))
	assert.NoError(t, statErr)
}

func TestVaultCleanupRemovesOldEntriesOnly(t *testing.T) {
	root := t.TempDir()
	v := New(filepath.Join(root, "vault"))
	require.NoError(t, v.ensureDirs())

	writeFakeEntry(t, v, "old", time.Now().Add(-48*time.Hour))
	writeFakeEntry(t, v, "fresh", time.Now())

	count, freed, err := v.Cleanup(1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Greater(t, freed, int64(0))

	entries, err := v.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].UUID)
}

func TestVaultCleanupZeroDaysRemovesEverythingOlderThanNow(t *testing.T) {
	root := t.TempDir()
	v := New(filepath.Join(root, "vault"))
	require.NoError(t, v.ensureDirs())

	writeFakeEntry(t, v, "a", time.Now().Add(-time.Second))

	count, _, err := v.Cleanup(0)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func writeFakeEntry(t *testing.T, v *Vault, id string, at time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(v.payloadPath(id), []byte("payload-bytes"), 0o644))
	require.NoError(t, writeSidecar(v.sidecarPath(id), &Entry{
		UUID:          id,
		OriginalPath:  "/tmp/" + id,
		QuarantinedAt: at,
		VirusName:     "X",
	}))
}
