// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package clamav

import (
	"fmt"
	"sync"
)

// State is the engine lifecycle state. Only Ready is operational.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateError
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Manager holds the single process-wide Engine instance and its lifecycle
// state. All transitions are mutually exclusive under one lock.
type Manager struct {
	mu       sync.Mutex
	engine   Engine
	state    State
	errMsg   string
	dbDir    string
	certsDir string
	newFn    func() Engine
}

// NewManager returns a Manager in state Uninitialized. newFn constructs a
// fresh Engine on every Initialize/reload; production wiring passes
// clamav.NewNative, tests pass a fake.
func NewManager(dbDir, certsDir string, newFn func() Engine) *Manager {
	return &Manager{dbDir: dbDir, certsDir: certsDir, newFn: newFn}
}

// Initialize is idempotent: if already Ready it returns nil immediately.
// Otherwise it transitions Uninitialized/Error/Failed -> Initializing,
// attempts to build and initialize a fresh Engine, and on success
// transitions to Ready; on failure it transitions to Error and returns the
// error.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	if m.state == StateReady {
		m.mu.Unlock()
		return nil
	}
	m.state = StateInitializing
	m.mu.Unlock()

	eng := m.newFn()
	err := eng.Initialize(m.dbDir, m.certsDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateError
		m.errMsg = err.Error()
		return err
	}
	m.engine = eng
	m.state = StateReady
	m.errMsg = ""
	return nil
}

// GetEngine returns the current Engine or an error if the manager isn't
// operational.
func (m *Manager) GetEngine() (Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReady {
		return nil, fmt.Errorf("engine not operational: %s", m.describeLocked())
	}
	return m.engine, nil
}

// Shutdown releases the handle and returns to Uninitialized.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	eng := m.engine
	m.engine = nil
	m.state = StateUninitialized
	m.errMsg = ""
	m.mu.Unlock()

	if eng != nil {
		return eng.Close()
	}
	return nil
}

// Reload shuts down then re-initializes; used after signature updates.
func (m *Manager) Reload() error {
	if err := m.Shutdown(); err != nil {
		return err
	}
	return m.Initialize()
}

// HealthCheck reports whether the manager is Ready.
func (m *Manager) HealthCheck() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateReady
}

// GetState returns the current state and, if in Error, the message.
func (m *Manager) GetState() (State, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.errMsg
}

func (m *Manager) describeLocked() string {
	if m.state == StateError {
		return fmt.Sprintf("error(%s)", m.errMsg)
	}
	return m.state.String()
}
