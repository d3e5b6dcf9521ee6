// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package history

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the durable history store. Implementations must never overwrite
// a terminal scan_history row with a later in-progress write — callers
// enforce that (scanservice), and UpdateProgress also only touches rows
// still in "scanning" status.
type Store interface {
	// CreateScan inserts rec as given; callers set its Status.
	CreateScan(rec *ScanRecord) error
	// UpdateProgress updates the non-terminal fields of an existing
	// scan_history row identified by ScanID.
	UpdateProgress(scanID string, scanned, discovered, threats int64, currentFile string) error
	// FinishScan writes the terminal state for a scan_history row.
	FinishScan(scanID, status string, endTime time.Time, totalFiles, scannedFiles, threatsFound int64, errMsg string) error
	// GetScan returns the scan_history row for scanID, or nil.
	GetScan(scanID string) (*ScanRecord, error)
	// RecentScans returns the most recent n scan_history rows, newest first.
	RecentScans(limit int) ([]ScanRecord, error)
	// MarkOrphanedRunningAsFailed closes out any row left "scanning" from a
	// prior process with message, used on startup crash recovery.
	MarkOrphanedRunningAsFailed(message string) (int64, error)

	// RecordThreat inserts a threat_records row and returns its id.
	RecordThreat(rec *ThreatRecord) (uint, error)
	// SetThreatAction records the action taken on a threat.
	SetThreatAction(id uint, action string, at time.Time) error
	// ListThreats returns threat_records for a scan, or all if scanID is "".
	ListThreats(scanID string, limit int) ([]ThreatRecord, error)

	// RecordUpdate inserts an update_history row.
	RecordUpdate(rec *UpdateRecord) error
	// RecentUpdates returns the most recent n update_history rows.
	RecentUpdates(limit int) ([]UpdateRecord, error)

	// RecordQuarantine inserts a quarantine_records row.
	RecordQuarantine(rec *QuarantineRecord) error
	// MarkQuarantineRestored flips Restored for the given uuid.
	MarkQuarantineRestored(uuid string, at time.Time) error
	// DeleteQuarantineRecord removes the row for uuid.
	DeleteQuarantineRecord(uuid string) error
	// ListQuarantineRecords returns every quarantine_records row.
	ListQuarantineRecords() ([]QuarantineRecord, error)
}

type gormStore struct {
	db *gorm.DB
}

// Open creates/opens a sqlite database at path (pure Go, no cgo, via
// glebarez/sqlite) and migrates the four history tables.
func Open(path string) (Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ScanRecord{}, &ThreatRecord{}, &UpdateRecord{}, &QuarantineRecord{}); err != nil {
		return nil, err
	}
	return &gormStore{db: db}, nil
}

func (s *gormStore) CreateScan(rec *ScanRecord) error {
	return s.db.Create(rec).Error
}

func (s *gormStore) UpdateProgress(scanID string, scanned, discovered, threats int64, currentFile string) error {
	return s.db.Model(&ScanRecord{}).Where("scan_id = ? AND status = ?", scanID, "scanning").Updates(map[string]any{
		"scanned_files": scanned,
		"total_files":   discovered,
		"threats_found": threats,
		"current_file":  currentFile,
	}).Error
}

func (s *gormStore) FinishScan(scanID, status string, endTime time.Time, totalFiles, scannedFiles, threatsFound int64, errMsg string) error {
	return s.db.Model(&ScanRecord{}).Where("scan_id = ?", scanID).Updates(map[string]any{
		"status":        status,
		"end_time":      endTime,
		"total_files":   totalFiles,
		"scanned_files": scannedFiles,
		"threats_found": threatsFound,
		"error_message": errMsg,
	}).Error
}

func (s *gormStore) GetScan(scanID string) (*ScanRecord, error) {
	var rec ScanRecord
	err := s.db.Where("scan_id = ?", scanID).First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormStore) RecentScans(limit int) ([]ScanRecord, error) {
	var recs []ScanRecord
	err := s.db.Order("start_time DESC").Limit(limit).Find(&recs).Error
	return recs, err
}

func (s *gormStore) MarkOrphanedRunningAsFailed(message string) (int64, error) {
	now := time.Now()
	res := s.db.Model(&ScanRecord{}).Where("status = ?", "scanning").Updates(map[string]any{
		"status":        "failed",
		"end_time":      now,
		"error_message": message,
	})
	return res.RowsAffected, res.Error
}

func (s *gormStore) RecordThreat(rec *ThreatRecord) (uint, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	err := s.db.Create(rec).Error
	return rec.ID, err
}

func (s *gormStore) SetThreatAction(id uint, action string, at time.Time) error {
	return s.db.Model(&ThreatRecord{}).Where("id = ?", id).Updates(map[string]any{
		"action_taken": action,
		"action_time":  at,
	}).Error
}

func (s *gormStore) ListThreats(scanID string, limit int) ([]ThreatRecord, error) {
	q := s.db.Order("created_at DESC")
	if scanID != "" {
		q = q.Where("scan_id = ?", scanID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []ThreatRecord
	err := q.Find(&recs).Error
	return recs, err
}

func (s *gormStore) RecordUpdate(rec *UpdateRecord) error {
	return s.db.Create(rec).Error
}

func (s *gormStore) RecentUpdates(limit int) ([]UpdateRecord, error) {
	var recs []UpdateRecord
	err := s.db.Order("start_time DESC").Limit(limit).Find(&recs).Error
	return recs, err
}

func (s *gormStore) RecordQuarantine(rec *QuarantineRecord) error {
	return s.db.Create(rec).Error
}

func (s *gormStore) MarkQuarantineRestored(uuid string, at time.Time) error {
	return s.db.Model(&QuarantineRecord{}).Where("uuid = ?", uuid).Updates(map[string]any{
		"restored":      true,
		"restored_time": at,
	}).Error
}

func (s *gormStore) DeleteQuarantineRecord(uuid string) error {
	return s.db.Where("uuid = ?", uuid).Delete(&QuarantineRecord{}).Error
}

func (s *gormStore) ListQuarantineRecords() ([]QuarantineRecord, error) {
	var recs []QuarantineRecord
	err := s.db.Order("quarantined_time DESC").Find(&recs).Error
	return recs, err
}
