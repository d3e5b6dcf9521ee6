// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package update drives freshclam as a black-box subprocess (C11),
// streaming its output the way the teacher's command executor streams
// scanner output, and records an update_history row via the signature
// version probe (C9) for before/after versions.
package update

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"sync"
	"time"

	"github.com/clamguard/backend/internal/history"
	"github.com/clamguard/backend/internal/sigver"
)

// CommandExecutor runs freshclam and streams its combined output a line
// at a time. Swappable in tests.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args []string, onLine func(line string)) error
}

type realCommandExecutor struct{}

// NewExecutor returns the default, subprocess-backed CommandExecutor.
func NewExecutor() CommandExecutor { return &realCommandExecutor{} }

func (e *realCommandExecutor) Execute(ctx context.Context, name string, args []string, onLine func(line string)) error {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	stream := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)
		for scanner.Scan() {
			onLine(maskCredentials(scanner.Text()))
		}
	}
	go stream(stdout)
	go stream(stderr)
	wg.Wait()

	return cmd.Wait()
}

// credentialPattern matches a URL userinfo segment (scheme://user:pass@)
// that may appear in a mirror URL logged by freshclam.
var credentialPattern = regexp.MustCompile(`://[^/@\s]+:[^/@\s]+@`)

func maskCredentials(line string) string {
	return credentialPattern.ReplaceAllString(line, "://***:***@")
}

// Updater drives freshclam and records the result in the history store.
type Updater struct {
	executor CommandExecutor
	sigDir   string
	store    history.Store
}

// New returns an Updater that runs freshclam via executor and records
// results into store, probing sigDir for before/after versions.
func New(executor CommandExecutor, sigDir string, store history.Store) *Updater {
	return &Updater{executor: executor, sigDir: sigDir, store: store}
}

// Result is the outcome of one update run.
type Result struct {
	Success    bool
	OldVersion string
	NewVersion string
	Output     []string
	Error      string
}

// Run invokes freshclam and records an update_history row.
func (u *Updater) Run(ctx context.Context) (*Result, error) {
	before := sigver.Probe(u.sigDir)
	start := time.Now()

	var lines []string
	var mu sync.Mutex
	err := u.executor.Execute(ctx, "freshclam", []string{"--stdout", "--no-warnings"}, func(line string) {
		mu.Lock()
		lines = append(lines, line)
		mu.Unlock()
	})

	after := sigver.Probe(u.sigDir)
	end := time.Now()

	result := &Result{
		Success:    err == nil,
		OldVersion: before["daily"],
		NewVersion: after["daily"],
		Output:     lines,
	}

	status := "success"
	if err != nil {
		status = "failed"
		result.Error = err.Error()
	}

	rec := &history.UpdateRecord{
		StartTime:  start,
		EndTime:    &end,
		Result:     status,
		OldVersion: result.OldVersion,
		NewVersion: result.NewVersion,
	}
	if err != nil {
		rec.ErrorMessage = fmt.Sprintf("%v", err)
	}
	if storeErr := u.store.RecordUpdate(rec); storeErr != nil {
		// a store failure must not be raised as an update failure; it's
		// dropped per the error handling design (store errors never
		// propagate back through an unrelated operation's result).
		_ = storeErr
	}

	return result, nil
}
