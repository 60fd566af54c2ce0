// Package metrics exposes Prometheus counters for the league tracker.
// All collectors are registered on the default registry; the router serves
// them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "league_actions_applied_total",
		Help: "State transitions applied to the aggregate, by action.",
	}, []string{"action"})

	actionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "league_actions_rejected_total",
		Help: "Actions rejected by validation, leaving the aggregate unchanged.",
	}, []string{"action"})

	snapshotSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "league_snapshot_saves_total",
		Help: "Snapshots successfully written to the configured backend.",
	})

	snapshotSaveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "league_snapshot_save_errors_total",
		Help: "Snapshot writes that failed.",
	})
)

// ActionApplied records one successfully applied action.
func ActionApplied(action string) { actionsApplied.WithLabelValues(action).Inc() }

// ActionRejected records one rejected action.
func ActionRejected(action string) { actionsRejected.WithLabelValues(action).Inc() }

// SnapshotSaved records one successful snapshot write.
func SnapshotSaved() { snapshotSaves.Inc() }

// SnapshotSaveFailed records one failed snapshot write.
func SnapshotSaveFailed() { snapshotSaveErrors.Inc() }
