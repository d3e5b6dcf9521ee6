// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package metrics exposes Prometheus counters and gauges for the scan
// orchestrator (C13), registered on the default registry and served at
// GET /metrics by the router.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TasksSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clamguard_tasks_submitted_total",
		Help: "Total scan tasks submitted to the scan engine.",
	})
	TasksCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clamguard_tasks_completed_total",
		Help: "Total scan tasks that finished Completed.",
	})
	TasksFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clamguard_tasks_failed_total",
		Help: "Total scan tasks that finished Failed.",
	})
	TasksCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clamguard_tasks_cancelled_total",
		Help: "Total scan tasks cancelled before completion.",
	})
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clamguard_queue_depth",
		Help: "Number of pending tasks not yet dispatched.",
	})
	ScanRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clamguard_scan_rate_files_per_second",
		Help: "EMA-smoothed scan rate of the currently active scan, 0 if idle.",
	})
	ThreatsFound = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clamguard_threats_found_total",
		Help: "Total infected files found across all scans.",
	})
)

func init() {
	prometheus.MustRegister(TasksSubmitted, TasksCompleted, TasksFailed, TasksCancelled, QueueDepth, ScanRate, ThreatsFound)
}
