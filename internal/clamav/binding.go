// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package clamav

/*
#cgo LDFLAGS: -lclamav
#include <clamav.h>
#include <stdio.h>
#include <stdlib.h>

static int cg_cl_init(unsigned int opts) {
	return cl_init(opts);
}

static void cg_scan_options(struct cl_scan_options *o, int archive, int pdf, int elf, int mail, int heuristics) {
	o->general = CL_SCAN_GENERAL_ALLMATCHES;
	o->parse = 0;
	o->heuristic = 0;
	if (archive) o->parse |= CL_SCAN_PARSE_ARCHIVE;
	if (pdf) o->parse |= CL_SCAN_PARSE_PDF;
	if (elf) o->parse |= CL_SCAN_PARSE_ELF;
	if (mail) o->parse |= CL_SCAN_PARSE_MAIL;
	if (heuristics) o->heuristic |= CL_SCAN_HEURISTIC_PRECEDENCE;
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/clamguard/backend/internal/task"
)

var globalInitOnce sync.Once
var globalInitErr error

// nativeEngine is the cgo-backed Engine implementation. It consumes only
// libclamav's documented entry points: cl_init, cl_engine_new,
// cl_engine_set_str, cl_load, cl_engine_compile, cl_scandesc,
// cl_engine_free. It is safe to send across goroutines; scan calls against
// one handle must be serialized by the caller (upheld by the single-
// active-scan invariant above this package).
type nativeEngine struct {
	mu     sync.Mutex
	handle *C.struct_cl_engine
	closed bool
}

// NewNative returns an uninitialized cgo-backed Engine.
func NewNative() Engine {
	return &nativeEngine{}
}

func (e *nativeEngine) Initialize(dbDir, certsDir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handle != nil {
		return nil // idempotent at the binding level; the manager enforces state transitions
	}

	globalInitOnce.Do(func() {
		rc := C.cg_cl_init(C.uint(0))
		if rc != C.CL_SUCCESS {
			globalInitErr = newEngineError(ErrInitializationFailed, int(rc), "cl_init failed")
		}
	})
	if globalInitErr != nil {
		return globalInitErr
	}

	handle := C.cl_engine_new()
	if handle == nil {
		return newEngineError(ErrEngineCreationFailed, -1, "cl_engine_new returned NULL")
	}

	if certsDir != "" {
		cCerts := C.CString(certsDir)
		defer C.free(unsafe.Pointer(cCerts))
		if rc := C.cl_engine_set_str(handle, C.CL_ENGINE_KEYDIR, cCerts); rc != C.CL_SUCCESS {
			C.cl_engine_free(handle)
			return newEngineError(ErrEngineCreationFailed, int(rc), "cl_engine_set_str(CL_ENGINE_KEYDIR) failed")
		}
	}

	cDB := C.CString(dbDir)
	defer C.free(unsafe.Pointer(cDB))
	var loaded C.uint
	if rc := C.cl_load(cDB, handle, &loaded, C.CL_DB_STDOPT); rc != C.CL_SUCCESS {
		C.cl_engine_free(handle)
		return newEngineError(ErrDatabaseLoadFailed, int(rc), fmt.Sprintf("cl_load(%s) failed", dbDir))
	}

	if rc := C.cl_engine_compile(handle); rc != C.CL_SUCCESS {
		C.cl_engine_free(handle)
		return newEngineError(ErrEngineCompilationFailed, int(rc), "cl_engine_compile failed")
	}

	e.handle = handle
	return nil
}

// mapVerdict applies the documented verdict scheme: 2 (strong indicator)
// and 3 (potentially unwanted) are infected; 1 (trusted) and 0 (clean) are
// not.
func mapVerdict(v int) bool {
	return v == 2 || v == 3
}

func boolToC(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

func (e *nativeEngine) ScanFile(path string, opts task.ScanOptions) (ScanResult, error) {
	e.mu.Lock()
	handle := e.handle
	e.mu.Unlock()

	if handle == nil {
		return ScanResult{}, newEngineError(ErrScanFailed, -1, "engine not initialized")
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	mode := C.CString("rb")
	defer C.free(unsafe.Pointer(mode))

	f := C.fopen(cPath, mode)
	if f == nil {
		return ScanResult{}, newEngineError(ErrScanFailed, -1, fmt.Sprintf("open %s failed", path))
	}
	defer C.fclose(f)

	var scanOpts C.struct_cl_scan_options
	C.cg_scan_options(&scanOpts, boolToC(opts.ScanArchive), boolToC(opts.ScanPDF), boolToC(opts.ScanELF), boolToC(opts.ScanMail), boolToC(opts.Heuristics))

	var virusName *C.char
	rc := C.cl_scandesc(C.int(C.fileno(f)), cPath, &virusName, nil, handle, &scanOpts)

	switch rc {
	case C.CL_CLEAN:
		return ScanResult{Filename: path}, nil
	case C.CL_VIRUS:
		name := "Unknown"
		if virusName != nil {
			name = C.GoString(virusName)
		}
		return ScanResult{Filename: path, IsInfected: mapVerdict(2), VirusName: name}, nil
	default:
		return ScanResult{}, newEngineError(ErrScanFailed, int(rc), "cl_scandesc failed")
	}
}

func (e *nativeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.handle == nil {
		e.closed = true
		return nil
	}
	C.cl_engine_free(e.handle)
	e.handle = nil
	e.closed = true
	return nil
}
