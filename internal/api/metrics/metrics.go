// Package metrics defines the custom Prometheus metrics of the file manager.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics register with the default registry on package init, which is what
// the /metrics endpoint exposes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "file_manager"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "liveness_failed" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SignupsTotal counts created accounts by role.
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of accounts created, by role.",
	},
	[]string{"role"},
)

// ── Liveness metrics ──────────────────────────────────────────────────────────

// LivenessQueueDepth tracks verifications waiting in each worker channel.
var LivenessQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "liveness_queue_depth",
		Help:      "Current number of face verifications pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// LivenessDuration measures a single face verification.
// Label:
//   - result: "match", "mismatch" or "error"
var LivenessDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "liveness_duration_seconds",
		Help:      "Duration of face verification, from dequeue to decision.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── File metrics ──────────────────────────────────────────────────────────────

// FileOperationsTotal counts file and folder operations.
// Labels:
//   - operation: e.g. "upload", "download", "delete", "rename", "create_folder"
//   - result: "ok" or the error kind ("validation", "conflict", …)
var FileOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of file and folder operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// UploadSizeBytes observes the size of accepted uploads.
var UploadSizeBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_size_bytes",
		Help:      "Size of uploaded files in bytes.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 9), // 1KiB … 64MiB
	},
)

// ── Reconciliation metrics ────────────────────────────────────────────────────

// ReconcileRemovedTotal counts stale entries and orphaned blobs cleaned up.
// Label:
//   - kind: "stale_entry" or "orphan_blob"
var ReconcileRemovedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_removed_total",
		Help:      "Total number of stale file entries and orphaned blobs removed.",
	},
	[]string{"kind"},
)

// EventsPublishedTotal counts file events handed to the broker.
// Labels:
//   - type: the event type (e.g. "file.uploaded")
//   - result: "ok" or "error"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of file events published, by type and result.",
	},
	[]string{"type", "result"},
)
