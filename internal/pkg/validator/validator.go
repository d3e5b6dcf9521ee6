// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package validator provides input validation utilities for security.
package validator

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// MaxScanPathLength bounds a single scan target to prevent DoS via
	// pathologically long request bodies.
	MaxScanPathLength = 4096
	// MaxScanPaths bounds how many targets a single custom scan may request.
	MaxScanPaths = 256
)

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateScanPath validates a single custom-scan target path. It does not
// require the path to exist; scanservice.StartScan already tolerates a mix
// of existing and missing targets.
func ValidateScanPath(path string) error {
	if path == "" {
		return &ValidationError{Field: "paths", Message: "path cannot be empty"}
	}

	if len(path) > MaxScanPathLength {
		return &ValidationError{
			Field:   "paths",
			Message: fmt.Sprintf("path exceeds maximum length of %d characters", MaxScanPathLength),
		}
	}

	if !filepath.IsAbs(path) {
		return &ValidationError{Field: "paths", Message: "path must be absolute"}
	}

	// exec.Command never touches a shell, but the path ends up in log lines
	// and history rows, so control characters are still rejected outright.
	for _, r := range path {
		if r == '\n' || r == '\r' || r == 0x00 {
			return &ValidationError{Field: "paths", Message: "path contains a control character"}
		}
	}

	return nil
}

// ValidateScanPaths validates every path in a custom-scan request.
func ValidateScanPaths(paths []string) error {
	if len(paths) > MaxScanPaths {
		return &ValidationError{
			Field:   "paths",
			Message: fmt.Sprintf("request exceeds maximum of %d paths", MaxScanPaths),
		}
	}
	for _, p := range paths {
		if err := ValidateScanPath(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSettingsKey validates a top-level key in the settings document.
// Prevents path traversal if a future version maps keys onto files.
func ValidateSettingsKey(key string) error {
	if key == "" {
		return &ValidationError{Field: "key", Message: "key cannot be empty"}
	}
	if strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return &ValidationError{Field: "key", Message: "key cannot contain path separators or '..'"}
	}
	return nil
}
