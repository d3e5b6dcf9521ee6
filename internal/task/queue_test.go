// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePriorityOrdering(t *testing.T) {
	q := NewQueue()
	low := NewWithPriority(Target{Kind: TargetFile, Path: "/a"}, PriorityLow, ScanOptions{})
	high := NewWithPriority(Target{Kind: TargetFile, Path: "/b"}, PriorityHigh, ScanOptions{})

	q.Push(low)
	q.Push(high)

	got := q.Pop()
	require.NotNil(t, got)
	assert.Equal(t, high.ID, got.ID)

	got = q.Pop()
	require.NotNil(t, got)
	assert.Equal(t, low.ID, got.ID)
}

func TestQueueFIFOTieBreak(t *testing.T) {
	q := NewQueue()
	first := NewWithPriority(Target{Kind: TargetFile, Path: "/a"}, PriorityNormal, ScanOptions{})
	second := NewWithPriority(Target{Kind: TargetFile, Path: "/b"}, PriorityNormal, ScanOptions{})

	q.Push(first)
	q.Push(second)

	assert.Equal(t, first.ID, q.Pop().ID)
	assert.Equal(t, second.ID, q.Pop().ID)
}

func TestQueueCancelPendingVsCurrent(t *testing.T) {
	q := NewQueue()
	pending := New(Target{Kind: TargetFile, Path: "/a"}, ScanOptions{})
	current := New(Target{Kind: TargetDirectory, Path: "/b"}, ScanOptions{})

	q.Push(pending)
	q.SetCurrent(current)

	assert.True(t, q.Cancel(pending.ID))
	assert.False(t, q.Cancel(current.ID), "cancel must not remove the current task; caller handles it via TakeCurrent")
}

func TestQueueSetTakeCurrent(t *testing.T) {
	q := NewQueue()
	assert.Nil(t, q.Current())

	tk := New(Target{Kind: TargetFile, Path: "/a"}, ScanOptions{})
	q.SetCurrent(tk)
	assert.Equal(t, tk.ID, q.Current().ID)

	taken := q.TakeCurrent()
	require.NotNil(t, taken)
	assert.Equal(t, tk.ID, taken.ID)
	assert.Nil(t, q.Current())
}

func TestQueueListPendingThenCurrent(t *testing.T) {
	q := NewQueue()
	a := New(Target{Kind: TargetFile, Path: "/a"}, ScanOptions{})
	cur := New(Target{Kind: TargetFile, Path: "/b"}, ScanOptions{})
	q.Push(a)
	q.SetCurrent(cur)

	list := q.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, cur.ID, list[1].ID)
}

func TestTargetFromPath(t *testing.T) {
	f := NewTargetFromPath("/tmp/x", false)
	assert.Equal(t, TargetFile, f.Kind)

	d := NewTargetFromPath("/tmp", true)
	assert.Equal(t, TargetDirectory, d.Kind)
}
