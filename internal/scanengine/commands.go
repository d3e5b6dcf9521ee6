// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package scanengine is the command-driven supervisor (C4) and its
// two-stage scan worker (C5). The supervisor owns a single command
// channel processed by one goroutine; it never executes a scan inline, so
// the channel stays responsive while a scan runs in its own goroutine.
package scanengine

import "github.com/clamguard/backend/internal/task"

type cmdKind int

const (
	cmdSubmit cmdKind = iota
	cmdCancel
	cmdPause
	cmdResume
	cmdGet
	cmdList
	cmdShutdown
)

// command is the tagged union of requests accepted by the command loop.
// Only the reply channel matching kind is populated by the caller.
type command struct {
	kind cmdKind
	task *task.Task
	id   string

	strReply   chan string
	boolReply  chan bool
	taskReply  chan *task.Task
	listReply  chan []*task.Task
	doneReply  chan struct{}
}
