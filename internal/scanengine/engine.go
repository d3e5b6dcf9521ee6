// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scanengine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/clamguard/backend/internal/clamav"
	"github.com/clamguard/backend/internal/metrics"
	"github.com/clamguard/backend/internal/task"
)

// ProgressCallback is invoked from the scan goroutine as progress arrives.
type ProgressCallback func(taskID string, p task.Progress)

// CompletionCallback is invoked by the command loop once a task reaches a
// terminal state and the current-task slot has been cleared.
type CompletionCallback func(taskID string, outcome task.Outcome)

type workerResult struct {
	taskID  string
	outcome task.Outcome
}

// Engine is the command-driven supervisor (C4). It owns the engine manager
// (C2) and the task queue (C3), accepts control messages on a single
// channel processed by one goroutine, and spawns the scan worker (C5) on
// its own goroutine so the command loop never blocks on a scan.
type Engine struct {
	mgr   *clamav.Manager
	queue *task.Queue

	cmdCh      chan command
	workerDone chan workerResult
	stopped    chan struct{}

	cancelFlag atomic.Bool

	pausedMu sync.Mutex
	paused   *task.Task // set while a Paused task awaits Resume

	cbMu         sync.Mutex
	progressCB   ProgressCallback
	completionCB CompletionCallback
}

// New returns an Engine and starts its command loop goroutine.
func New(mgr *clamav.Manager) *Engine {
	e := &Engine{
		mgr:        mgr,
		queue:      task.NewQueue(),
		cmdCh:      make(chan command),
		workerDone: make(chan workerResult),
		stopped:    make(chan struct{}),
	}
	go e.run()
	return e
}

// SetProgressCallback installs the callback invoked on every progress
// emission. Swapping is a brief lock; invocation happens outside it.
func (e *Engine) SetProgressCallback(cb ProgressCallback) {
	e.cbMu.Lock()
	e.progressCB = cb
	e.cbMu.Unlock()
}

// SetCompletionCallback installs the callback invoked once per terminal
// task outcome.
func (e *Engine) SetCompletionCallback(cb CompletionCallback) {
	e.cbMu.Lock()
	e.completionCB = cb
	e.cbMu.Unlock()
}

func (e *Engine) emitProgress(taskID string, p task.Progress) {
	e.cbMu.Lock()
	cb := e.progressCB
	e.cbMu.Unlock()
	if cb != nil {
		cb(taskID, p)
	}
}

func (e *Engine) emitCompletion(taskID string, outcome task.Outcome) {
	e.cbMu.Lock()
	cb := e.completionCB
	e.cbMu.Unlock()
	if cb != nil {
		cb(taskID, outcome)
	}
}

// SubmitTask enqueues t and returns its id.
func (e *Engine) SubmitTask(t *task.Task) string {
	reply := make(chan string, 1)
	e.cmdCh <- command{kind: cmdSubmit, task: t, strReply: reply}
	return <-reply
}

// CancelTask raises the cancel flag and, if id matches the current task,
// clears the current-task slot synchronously. Reports whether anything
// matched (pending or current).
func (e *Engine) CancelTask(id string) bool {
	reply := make(chan bool, 1)
	e.cmdCh <- command{kind: cmdCancel, id: id, boolReply: reply}
	return <-reply
}

// PauseTask stops the current task (if id matches it) without discarding
// it: Resume re-dispatches the same task from scratch.
func (e *Engine) PauseTask(id string) bool {
	reply := make(chan bool, 1)
	e.cmdCh <- command{kind: cmdPause, id: id, boolReply: reply}
	return <-reply
}

// ResumeTask re-queues a previously paused task and dispatches it.
func (e *Engine) ResumeTask(id string) bool {
	reply := make(chan bool, 1)
	e.cmdCh <- command{kind: cmdResume, id: id, boolReply: reply}
	return <-reply
}

// GetTask returns a snapshot of the task with the given id, or nil.
func (e *Engine) GetTask(id string) *task.Task {
	reply := make(chan *task.Task, 1)
	e.cmdCh <- command{kind: cmdGet, id: id, taskReply: reply}
	return <-reply
}

// ListTasks returns pending tasks, then current (if any), then the paused
// task (if any).
func (e *Engine) ListTasks() []*task.Task {
	reply := make(chan []*task.Task, 1)
	e.cmdCh <- command{kind: cmdList, listReply: reply}
	return <-reply
}

// Shutdown stops the command loop. Further calls on e will block forever;
// callers must not use e afterward.
func (e *Engine) Shutdown() {
	reply := make(chan struct{}, 1)
	e.cmdCh <- command{kind: cmdShutdown, doneReply: reply}
	<-reply
	<-e.stopped
}

func (e *Engine) run() {
	defer close(e.stopped)

	for {
		select {
		case cmd := <-e.cmdCh:
			if e.handle(cmd) {
				return
			}
		case res := <-e.workerDone:
			e.handleWorkerDone(res)
		}
		metrics.QueueDepth.Set(float64(e.queue.Len()))
	}
}

// handle processes one command and reports whether the loop should stop.
func (e *Engine) handle(cmd command) bool {
	switch cmd.kind {
	case cmdSubmit:
		cmd.task.State = task.StatePending
		e.queue.Push(cmd.task)
		cmd.strReply <- cmd.task.ID
		e.processNext()

	case cmdCancel:
		matched := false
		if cur := e.queue.Current(); cur != nil && cur.ID == cmd.id {
			e.cancelFlag.Store(true)
			e.queue.TakeCurrent()
			matched = true
		}
		if e.queue.Cancel(cmd.id) {
			matched = true
		}
		cmd.boolReply <- matched

	case cmdPause:
		cur := e.queue.Current()
		if cur == nil || cur.ID != cmd.id {
			cmd.boolReply <- false
			break
		}
		e.cancelFlag.Store(true)
		cur.State = task.StatePaused
		e.queue.TakeCurrent()
		e.pausedMu.Lock()
		e.paused = cur
		e.pausedMu.Unlock()
		cmd.boolReply <- true

	case cmdResume:
		e.pausedMu.Lock()
		p := e.paused
		if p == nil || p.ID != cmd.id {
			e.pausedMu.Unlock()
			cmd.boolReply <- false
			break
		}
		e.paused = nil
		e.pausedMu.Unlock()
		p.State = task.StatePending
		e.queue.Push(p)
		cmd.boolReply <- true
		e.processNext()

	case cmdGet:
		if t := e.queue.Find(cmd.id); t != nil {
			cmd.taskReply <- t
			break
		}
		e.pausedMu.Lock()
		p := e.paused
		e.pausedMu.Unlock()
		if p != nil && p.ID == cmd.id {
			cmd.taskReply <- p
			break
		}
		cmd.taskReply <- nil

	case cmdList:
		out := e.queue.List()
		e.pausedMu.Lock()
		if e.paused != nil {
			out = append(out, e.paused)
		}
		e.pausedMu.Unlock()
		cmd.listReply <- out

	case cmdShutdown:
		cmd.doneReply <- struct{}{}
		return true
	}
	return false
}

// processNext is a no-op if a task is already current; otherwise it pops
// the next pending task, sets it current, resets the cancel flag, and
// spawns the worker. The command loop never blocks here.
func (e *Engine) processNext() {
	if e.queue.Current() != nil {
		return
	}
	next := e.queue.Pop()
	if next == nil {
		return
	}

	e.cancelFlag.Store(false)
	next.State = task.StateRunning
	e.queue.SetCurrent(next)

	eng, err := e.mgr.GetEngine()
	if err != nil {
		e.queue.TakeCurrent()
		outcome := task.Outcome{Status: task.StateFailed, ErrorMessage: fmt.Sprintf("engine not available: %v", err)}
		e.emitCompletion(next.ID, outcome)
		return
	}

	go func(t *task.Task) {
		outcome := runWorker(eng, t, &e.cancelFlag, func(p task.Progress) {
			e.emitProgress(t.ID, p)
		})
		e.workerDone <- workerResult{taskID: t.ID, outcome: outcome}
	}(next)
}

func (e *Engine) handleWorkerDone(res workerResult) {
	e.pausedMu.Lock()
	pausedMatch := e.paused != nil && e.paused.ID == res.taskID
	e.pausedMu.Unlock()
	if pausedMatch {
		// the worker stopped because of a pause, not a real terminal state;
		// the task stays parked in e.paused awaiting Resume.
		return
	}

	if cur := e.queue.Current(); cur != nil && cur.ID == res.taskID {
		e.queue.TakeCurrent()
	}
	e.emitCompletion(res.taskID, res.outcome)
	e.processNext()
}
