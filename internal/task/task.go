// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package task defines the scan task model and the priority queue that
// orders pending tasks for the scan engine's command loop.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Priority orders pending tasks. Higher values are dispatched first; ties
// break FIFO (insertion order).
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// State is the lifecycle state of a Task.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// TargetKind distinguishes a single-file target from a directory target.
type TargetKind int

const (
	TargetFile TargetKind = iota
	TargetDirectory
)

// Target is the polymorphic scan target: either a single file or a
// directory to be walked.
type Target struct {
	Kind TargetKind
	Path string
}

// NewTargetFromPath builds a Target for path whose kind follows isDir; it
// does not stat path itself, so callers pass what their own stat reported.
func NewTargetFromPath(path string, isDir bool) Target {
	if isDir {
		return Target{Kind: TargetDirectory, Path: path}
	}
	return Target{Kind: TargetFile, Path: path}
}

// ScanOptions are the boolean toggles passed through to the native engine.
// Immutable once a task is submitted.
type ScanOptions struct {
	ScanArchive bool
	ScanPDF     bool
	ScanELF     bool
	ScanMail    bool
	Heuristics  bool
}

// Threat is one infected file found during a scan.
type Threat struct {
	Path      string
	VirusName string
}

// Progress is a point-in-time snapshot of a running scan.
type Progress struct {
	Percent         int
	ScannedFiles    int64
	TotalFiles      int64
	DiscoveredFiles int64
	ThreatsFound    int64
	CurrentFile     *string
	ScanRate        *float64 // files/s, EMA-smoothed
}

// Outcome is the terminal result of a task.
type Outcome struct {
	Status       State // StateCompleted or StateFailed; a cancelled scan ends StateFailed with "Scan cancelled"
	TotalFiles   int64
	ScannedFiles int64
	Threats      []Threat
	ErrorMessage string
}

// Task is one unit of work submitted through the scan engine's command
// channel. Mutated only by the command loop or the worker that owns it.
type Task struct {
	ID          string
	Target      Target
	Priority    Priority
	State       State
	Options     ScanOptions
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Progress    Progress
	Outcome     *Outcome
}

// New creates a Pending task with PriorityNormal and a fresh id.
func New(target Target, options ScanOptions) *Task {
	return NewWithPriority(target, PriorityNormal, options)
}

// NewWithPriority creates a Pending task with the given priority.
func NewWithPriority(target Target, priority Priority, options ScanOptions) *Task {
	return &Task{
		ID:        uuid.New().String(),
		Target:    target,
		Priority:  priority,
		State:     StatePending,
		Options:   options,
		CreatedAt: time.Now(),
	}
}
