// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package validator

import (
	"strings"
	"testing"
)

func TestValidateScanPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid absolute path", "/home/user/documents", false},
		{"valid root", "/", false},
		{"valid with spaces", "/home/user/my documents", false},
		{"valid with dots", "/home/user/archive.tar.gz", false},

		{"empty string", "", true},
		{"relative path", "home/user", true},
		{"too long", "/" + strings.Repeat("a", 4096), true},
		{"with newline", "/home/user\n/etc/passwd", true},
		{"with carriage return", "/home/user\r", true},
		{"with null byte", "/home/user\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScanPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScanPath() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateScanPaths(t *testing.T) {
	if err := ValidateScanPaths([]string{"/home", "/var"}); err != nil {
		t.Errorf("ValidateScanPaths() unexpected error = %v", err)
	}

	if err := ValidateScanPaths([]string{"/home", "relative"}); err == nil {
		t.Error("ValidateScanPaths() expected error for relative path, got nil")
	}

	tooMany := make([]string, MaxScanPaths+1)
	for i := range tooMany {
		tooMany[i] = "/home"
	}
	if err := ValidateScanPaths(tooMany); err == nil {
		t.Error("ValidateScanPaths() expected error for too many paths, got nil")
	}
}

func TestValidateSettingsKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid simple key", "scan_schedule", false},
		{"valid with dot", "update.interval", false},

		{"empty string", "", true},
		{"with forward slash", "a/b", true},
		{"with backslash", "a\\b", true},
		{"with double dot", "a..b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSettingsKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSettingsKey() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "testField",
		Message: "test message",
	}

	expected := "validation error for field 'testField': test message"
	if err.Error() != expected {
		t.Errorf("ValidationError.Error() = %v, want %v", err.Error(), expected)
	}
}
