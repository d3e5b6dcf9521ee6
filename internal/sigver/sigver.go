// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sigver probes signature database versions (C9) and reports disk
// free space for the directories the daemon cares about.
package sigver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

const headerProbeBytes = 512

var dbBaseNames = []string{"daily", "main", "bytecode"}
var dbExtensions = []string{".cvd", ".cld"}

const vdbMagic = "ClamAV-VDB:"

// Versions maps each database base name ("daily", "main", "bytecode") to
// its probed version string, or "unknown" if it couldn't be determined.
type Versions map[string]string

// Probe inspects dir for daily/main/bytecode .cvd/.cld files and extracts
// their signature version from the ClamAV-VDB header line.
func Probe(dir string) Versions {
	out := make(Versions, len(dbBaseNames))
	for _, base := range dbBaseNames {
		out[base] = probeOne(dir, base)
	}
	return out
}

func probeOne(dir, base string) string {
	for _, ext := range dbExtensions {
		path := filepath.Join(dir, base+ext)
		if v, ok := readVersion(path); ok {
			return v
		}
	}
	return "unknown"
}

func readVersion(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	buf := make([]byte, headerProbeBytes)
	n, err := f.Read(buf)
	if n == 0 || (err != nil && n == 0) {
		return "", false
	}
	buf = buf[:n]

	if !bytes.HasPrefix(buf, []byte(vdbMagic)) {
		return "", false
	}

	fields := bytes.SplitN(buf, []byte(":"), 4)
	if len(fields) < 3 {
		return "", false
	}
	return string(bytes.TrimSpace(fields[2])), true
}

// DiskFree reports free bytes on the filesystem backing dir.
func DiskFree(dir string) (uint64, error) {
	usage, err := disk.Usage(dir)
	if err != nil {
		return 0, fmt.Errorf("disk usage for %s: %w", dir, err)
	}
	return usage.Free, nil
}
