// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package history is the durable store (C8): four gorm-backed tables
// recording scan runs, threats found, signature updates, and quarantine
// actions, each with descending time indexes.
package history

import "time"

// ScanRecord is one row of scan_history.
type ScanRecord struct {
	ID            uint   `gorm:"primaryKey"`
	ScanID        string `gorm:"uniqueIndex;size:64"`
	ScanType      string `gorm:"size:16"` // "full" | "custom"
	PathsJSON     string
	Status        string `gorm:"index"` // scanning | completed | failed | stopped
	StartTime     time.Time `gorm:"index:idx_scan_history_start,sort:desc"`
	EndTime       *time.Time
	TotalFiles    int64
	ScannedFiles  int64
	ThreatsFound  int64
	CurrentFile   string
	ErrorMessage  string
}

func (ScanRecord) TableName() string { return "scan_history" }

// ThreatRecord is one row of threat_records.
type ThreatRecord struct {
	ID               uint   `gorm:"primaryKey"`
	ScanID           string `gorm:"index"`
	FilePath         string
	VirusName        string
	ActionTaken      string // "" | quarantine | delete | ignore
	ActionTime       *time.Time
	OriginalLocation string
	FileHash         string
	CreatedAt        time.Time `gorm:"index:idx_threat_records_created,sort:desc"`
}

func (ThreatRecord) TableName() string { return "threat_records" }

// UpdateRecord is one row of update_history.
type UpdateRecord struct {
	ID           uint      `gorm:"primaryKey"`
	StartTime    time.Time `gorm:"index:idx_update_history_start,sort:desc"`
	EndTime      *time.Time
	Result       string // "success" | "failed"
	OldVersion   string
	NewVersion   string
	ErrorMessage string
}

func (UpdateRecord) TableName() string { return "update_history" }

// QuarantineRecord is one row of quarantine_records.
type QuarantineRecord struct {
	ID              uint   `gorm:"primaryKey"`
	UUID            string `gorm:"uniqueIndex;size:36"`
	ThreatID        *uint
	QuarantinePath  string
	OriginalPath    string
	QuarantinedTime time.Time `gorm:"index:idx_quarantine_records_time,sort:desc"`
	FileSize        int64
	Restored        bool
	RestoredTime    *time.Time
}

func (QuarantineRecord) TableName() string { return "quarantine_records" }
