// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package clamav wraps libclamav behind a small Go interface. Everything
// above this package (the engine manager, the scan worker, the scan
// service) depends only on Engine, never on cgo directly, so it can be
// exercised against a fake in tests that never link libclamav.
package clamav

import (
	"fmt"

	"github.com/clamguard/backend/internal/task"
)

// ScanResult is the outcome of a single-file scan call.
type ScanResult struct {
	Filename    string
	IsInfected  bool
	VirusName   string // empty unless IsInfected
}

// Engine is a thin, safe facade around a native scanning engine. An Engine
// is not internally thread-safe for ScanFile calls against one instance —
// callers must serialize, which the scan engine's single-active-task
// invariant upholds. Close is safe from any goroutine and idempotent.
type Engine interface {
	// Initialize performs one-time library init, allocates the engine
	// handle, optionally points at certsDir, loads signatures from dbDir
	// and compiles them. Concurrent calls on the same Engine are an error.
	Initialize(dbDir, certsDir string) error
	// ScanFile synchronously scans one file and blocks the caller.
	ScanFile(path string, opts task.ScanOptions) (ScanResult, error)
	// Close frees the native handle. Safe to call more than once.
	Close() error
}

// ErrKind names a class of engine error, carrying the native return code
// that produced it.
type ErrKind string

const (
	ErrInitializationFailed  ErrKind = "InitializationFailed"
	ErrEngineCreationFailed  ErrKind = "EngineCreationFailed"
	ErrDatabaseLoadFailed    ErrKind = "DatabaseLoadFailed"
	ErrEngineCompilationFailed ErrKind = "EngineCompilationFailed"
	ErrScanFailed            ErrKind = "ScanFailed"
)

// EngineError wraps a native libclamav return code with the stage it
// failed at.
type EngineError struct {
	Kind ErrKind
	Code int
	Msg  string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s (native code %d)", e.Kind, e.Msg, e.Code)
}

func newEngineError(kind ErrKind, code int, msg string) *EngineError {
	return &EngineError{Kind: kind, Code: code, Msg: msg}
}
