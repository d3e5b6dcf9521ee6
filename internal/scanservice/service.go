// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package scanservice is the adapter between the typed scan engine and the
// business API (C6): it binds a business scan_id to a worker task_id,
// publishes a live progress snapshot, and writes terminal state to the
// history store exactly once per scan_id.
package scanservice

import (
	"errors"
	"sync"
	"time"

	"github.com/clamguard/backend/internal/history"
	"github.com/clamguard/backend/internal/metrics"
	"github.com/clamguard/backend/internal/quarantine"
	"github.com/clamguard/backend/internal/scanengine"
	"github.com/clamguard/backend/internal/task"
	"golang.org/x/time/rate"
)

// ActiveScan is the service-level view of a running scan.
type ActiveScan struct {
	ScanID    string
	TaskID    string
	StartTime time.Time
	Progress  task.Progress
	Status    string // scanning | completed | failed | paused
}

var ErrNoActiveScan = errors.New("no scan in progress")
var ErrNoPathExists = errors.New("no existing path among the requested targets")

// Service is the business-facing scan façade.
type Service struct {
	engine *scanengine.Engine
	store  history.Store
	vault  *quarantine.Vault

	mu         sync.Mutex
	active     map[string]*ActiveScan // scanID -> snapshot
	taskToScan map[string]string      // taskID -> scanID

	progressLimiter *rate.Limiter

	cleanupDays int
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// New wires a Service around an already-running scanengine.Engine.
func New(engine *scanengine.Engine, store history.Store, vault *quarantine.Vault, quarantineRetentionDays int) *Service {
	s := &Service{
		engine:          engine,
		store:           store,
		vault:           vault,
		active:          map[string]*ActiveScan{},
		taskToScan:      map[string]string{},
		progressLimiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		cleanupDays:     quarantineRetentionDays,
		stopCh:          make(chan struct{}),
	}
	engine.SetProgressCallback(s.onProgress)
	engine.SetCompletionCallback(s.onCompletion)
	return s
}

// Start recovers any history rows orphaned by a prior crash and launches
// the retention/cleanup background worker.
func (s *Service) Start() error {
	if _, err := s.store.MarkOrphanedRunningAsFailed("interrupted by restart"); err != nil {
		return err
	}
	s.wg.Add(1)
	go s.cleanupWorker()
	return nil
}

// Stop halts the background worker. It does not touch any in-flight scan.
func (s *Service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Service) cleanupWorker() {
	defer s.wg.Done()
	s.runCleanupSweep()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			if now.Hour() == 2 {
				s.runCleanupSweep()
			}
		}
	}
}

func (s *Service) runCleanupSweep() {
	if s.vault == nil || s.cleanupDays <= 0 {
		return
	}
	s.vault.Cleanup(s.cleanupDays)
}

// StartScan validates that at least one path exists, submits a task for
// the first existing one, and registers an ActiveScan under scanID.
func (s *Service) StartScan(scanID string, paths []string, priority task.Priority, opts task.ScanOptions) (string, error) {
	target, err := firstExistingTarget(paths)
	if err != nil {
		return "", err
	}

	// the mapping and the history row exist before the task is submitted,
	// so a fast task's completion always finds its scan_id and row.
	t := task.NewWithPriority(target, priority, opts)

	s.mu.Lock()
	s.active[scanID] = &ActiveScan{ScanID: scanID, TaskID: t.ID, StartTime: time.Now(), Status: "scanning"}
	s.taskToScan[t.ID] = scanID
	s.mu.Unlock()

	pathsJSON, _ := marshalPaths(paths)
	_ = s.store.CreateScan(&history.ScanRecord{
		ScanID:    scanID,
		ScanType:  "custom",
		PathsJSON: pathsJSON,
		Status:    "scanning",
		StartTime: time.Now(),
	})

	taskID := s.engine.SubmitTask(t)
	metrics.TasksSubmitted.Inc()

	return taskID, nil
}

// StopScan cancels scanID's task and writes a terminal "stopped" record.
func (s *Service) StopScan(scanID string) error {
	// the mapping is dropped before cancelling, so the cancelled task's
	// completion callback finds no scan_id and writes nothing.
	s.mu.Lock()
	as, ok := s.active[scanID]
	if ok {
		delete(s.active, scanID)
		delete(s.taskToScan, as.TaskID)
	}
	s.mu.Unlock()
	if !ok {
		return ErrNoActiveScan
	}

	s.engine.CancelTask(as.TaskID)
	metrics.TasksCancelled.Inc()

	_ = s.store.FinishScan(scanID, "stopped", time.Now(), as.Progress.TotalFiles, as.Progress.ScannedFiles, as.Progress.ThreatsFound, "")

	return nil
}

// GetCurrentScanProgress returns a copy of the first active scan's
// progress, or nil if none is active.
func (s *Service) GetCurrentScanProgress() *ActiveScan {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, as := range s.active {
		clone := *as
		return &clone
	}
	return nil
}

// GetCurrentScanID returns the active scan id, or "" if none.
func (s *Service) GetCurrentScanID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.active {
		return id
	}
	return ""
}

// IsScanning reports whether any scan is active.
func (s *Service) IsScanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active) > 0
}

func (s *Service) onProgress(taskID string, p task.Progress) {
	s.mu.Lock()
	scanID, ok := s.taskToScan[taskID]
	if !ok {
		s.mu.Unlock()
		return
	}
	as := s.active[scanID]
	as.Progress = p
	s.mu.Unlock()

	// only while scanned < discovered is a non-terminal write enqueued;
	// once they're equal the task is about to go terminal and the
	// completion callback owns the final record.
	if p.ScanRate != nil {
		metrics.ScanRate.Set(*p.ScanRate)
	}

	if p.ScannedFiles < p.DiscoveredFiles && s.progressLimiter.Allow() {
		_ = s.store.UpdateProgress(scanID, p.ScannedFiles, p.DiscoveredFiles, p.ThreatsFound, derefOrEmpty(p.CurrentFile))
	}
}

func (s *Service) onCompletion(taskID string, outcome task.Outcome) {
	s.mu.Lock()
	scanID, ok := s.taskToScan[taskID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.taskToScan, taskID)
	delete(s.active, scanID)
	s.mu.Unlock()

	status := "completed"
	if outcome.Status == task.StateFailed {
		status = "failed"
		metrics.TasksFailed.Inc()
	} else {
		metrics.TasksCompleted.Inc()
	}
	metrics.ScanRate.Set(0)

	_ = s.store.FinishScan(scanID, status, time.Now(), outcome.TotalFiles, outcome.ScannedFiles, int64(len(outcome.Threats)), outcome.ErrorMessage)

	for _, th := range outcome.Threats {
		metrics.ThreatsFound.Inc()
		_, _ = s.store.RecordThreat(&history.ThreatRecord{ScanID: scanID, FilePath: th.Path, VirusName: th.VirusName})
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
