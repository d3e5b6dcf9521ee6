// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scanengine

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clamguard/backend/internal/clamav"
	"github.com/clamguard/backend/internal/task"
)

const emaAlpha = 0.3

// progressThrottle bounds how often the scan stage emits progress during a
// directory scan.
const progressThrottle = 100 * time.Millisecond

// runWorker drives one task to completion: single-file targets emit
// exactly two progress points, directory targets run the discovery/scan
// pipeline. cancelFlag is shared with the supervisor; runWorker only reads
// it. emit is called from the worker's own goroutine(s) — the caller must
// make it safe to invoke concurrently with itself if it spawns more than
// one scan goroutine (it doesn't here: the scan stage is single-threaded).
func runWorker(eng clamav.Engine, t *task.Task, cancelFlag *atomic.Bool, emit func(task.Progress)) task.Outcome {
	if _, err := os.Stat(t.Target.Path); err != nil {
		return task.Outcome{Status: task.StateFailed, ErrorMessage: "Path does not exist: " + t.Target.Path}
	}

	if t.Target.Kind == task.TargetFile {
		return scanSingleFile(eng, t, emit)
	}
	return scanDirectory(eng, t, cancelFlag, emit)
}

func scanSingleFile(eng clamav.Engine, t *task.Task, emit func(task.Progress)) task.Outcome {
	path := t.Target.Path
	emit(task.Progress{Percent: 0, ScannedFiles: 0, TotalFiles: 1, DiscoveredFiles: 1, CurrentFile: &path})

	result, err := eng.ScanFile(path, t.Options)
	var threats []task.Threat
	var threatsFound int64
	if err != nil {
		// per-file failure: logged by the caller, not counted as scanned or a threat
	} else if result.IsInfected {
		threats = append(threats, task.Threat{Path: path, VirusName: result.VirusName})
		threatsFound = 1
	}

	scanned := int64(0)
	if err == nil {
		scanned = 1
	}
	emit(task.Progress{Percent: 100, ScannedFiles: scanned, TotalFiles: 1, DiscoveredFiles: 1, ThreatsFound: threatsFound})

	return task.Outcome{Status: task.StateCompleted, TotalFiles: 1, ScannedFiles: scanned, Threats: threats}
}

func scanDirectory(eng clamav.Engine, t *task.Task, cancelFlag *atomic.Bool, emit func(task.Progress)) task.Outcome {
	dirPath := t.Target.Path
	emit(task.Progress{Percent: 0, ScannedFiles: 0, TotalFiles: 0, DiscoveredFiles: 0, CurrentFile: &dirPath})

	var discovered atomic.Int64
	var scanned atomic.Int64
	var threatsFound atomic.Int64
	var discoveryComplete atomic.Bool
	var discoveryCancelled atomic.Bool
	var scanCancelled atomic.Bool

	fileCh := make(chan string, 256)
	abortCh := make(chan struct{})
	var abortOnce sync.Once
	abort := func() { abortOnce.Do(func() { close(abortCh) }) }

	var threatsMu sync.Mutex
	var threats []task.Threat

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer close(fileCh)
		discoverFiles(dirPath, &discovered, cancelFlag, &discoveryCancelled, fileCh, abortCh)
		discoveryComplete.Store(true)
	}()

	go func() {
		defer wg.Done()
		var ema float64
		var firstScanAt time.Time
		lastEmit := time.Now()

		defer abort()

		for path := range fileCh {
			if cancelFlag.Load() {
				scanCancelled.Store(true)
				return
			}

			if firstScanAt.IsZero() {
				firstScanAt = time.Now()
			}

			result, err := eng.ScanFile(path, t.Options)
			if err != nil {
				continue // per-file failure: not counted as scanned or threat
			}
			scanned.Add(1)
			if result.IsInfected {
				threatsMu.Lock()
				threats = append(threats, task.Threat{Path: path, VirusName: result.VirusName})
				threatsMu.Unlock()
				threatsFound.Add(1)
			}

			elapsed := time.Since(firstScanAt).Seconds()
			if elapsed > 0 {
				instant := float64(scanned.Load()) / elapsed
				if ema == 0 {
					ema = instant
				} else {
					ema = emaAlpha*instant + (1-emaAlpha)*ema
				}
			}

			if time.Since(lastEmit) > progressThrottle {
				d := discovered.Load()
				s := scanned.Load()
				percent := 0
				if d > 0 {
					percent = int(min64(100, s*100/d))
				}
				p := task.Progress{
					Percent:         percent,
					ScannedFiles:    s,
					TotalFiles:      d,
					DiscoveredFiles: d,
					ThreatsFound:    threatsFound.Load(),
					CurrentFile:     strPtr(path),
				}
				if ema > 0 {
					rate := ema
					p.ScanRate = &rate
				}
				emit(p)
				lastEmit = time.Now()
			}

			if cancelFlag.Load() {
				scanCancelled.Store(true)
				return
			}
		}
	}()

	wg.Wait()

	if scanCancelled.Load() || discoveryCancelled.Load() {
		return task.Outcome{Status: task.StateFailed, ErrorMessage: "Scan cancelled", ScannedFiles: scanned.Load(), TotalFiles: discovered.Load()}
	}

	threatsMu.Lock()
	finalThreats := threats
	threatsMu.Unlock()

	emit(task.Progress{Percent: 100, ScannedFiles: scanned.Load(), TotalFiles: discovered.Load(), DiscoveredFiles: discovered.Load(), ThreatsFound: threatsFound.Load()})

	return task.Outcome{
		Status:       task.StateCompleted,
		TotalFiles:   discovered.Load(),
		ScannedFiles: scanned.Load(),
		Threats:      finalThreats,
	}
}

// discoverFiles walks dirPath iteratively (explicit stack, no recursion),
// pushing every file path onto fileCh and counting it into discovered.
// Unreadable directories are skipped. The cancel flag is checked per
// directory and every 1000 entries.
func discoverFiles(dirPath string, discovered *atomic.Int64, cancelFlag *atomic.Bool, discoveryCancelled *atomic.Bool, fileCh chan<- string, abortCh <-chan struct{}) {
	stack := []string{dirPath}
	entriesSinceCheck := 0

	for len(stack) > 0 {
		if cancelFlag.Load() {
			discoveryCancelled.Store(true)
			return
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue // unreadable directory: skip, trace-level note is the caller's concern
		}

		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				stack = append(stack, full)
				continue
			}
			discovered.Add(1)
			select {
			case fileCh <- full:
			case <-abortCh:
				discoveryCancelled.Store(true)
				return
			}

			entriesSinceCheck++
			if entriesSinceCheck >= 1000 {
				entriesSinceCheck = 0
				if cancelFlag.Load() {
					discoveryCancelled.Store(true)
					return
				}
			}
		}
	}
}

func strPtr(s string) *string { return &s }

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
