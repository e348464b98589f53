// Package metrics defines and registers all custom Prometheus metrics for the
// zone monitor. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "zone_monitor"

// ── Position metrics ──────────────────────────────────────────────────────────

// PositionsMergedTotal counts merge outcomes.
// Labels:
//   - result: "added", "updated", "stale" or "invalid"
//   - source: the feed that delivered the record (e.g. "live", "poll", "api")
var PositionsMergedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "positions_merged_total",
		Help:      "Total number of position records submitted, by merge result and source.",
	},
	[]string{"result", "source"},
)

// PositionsRemovedTotal counts explicit entity removals.
var PositionsRemovedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "positions_removed_total",
		Help:      "Total number of entities removed from tracking.",
	},
)

// TrackedEntities is the number of entities currently held by the reconciler.
var TrackedEntities = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tracked_entities",
		Help:      "Current number of tracked entities.",
	},
)

// PositionProcessingDuration measures one submit from dequeue to alert delivery.
// Label:
//   - result: "applied", "stale" or "error"
var PositionProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "position_processing_duration_seconds",
		Help:      "Duration of position processing from dequeue to alert delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// DispatchQueueDepth tracks pending positions in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var DispatchQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dispatch_queue_depth",
		Help:      "Current number of positions pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Geofence metrics ──────────────────────────────────────────────────────────

// ViolationEventsTotal counts state transitions.
// Label:
//   - kind: "zone_violation" or "zone_recovered"
var ViolationEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "violation_events_total",
		Help:      "Total number of geofence state transitions, by kind.",
	},
	[]string{"kind"},
)

// EntitiesOutOfZone is the number of tracked entities currently outside.
var EntitiesOutOfZone = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "entities_out_of_zone",
		Help:      "Current number of tracked entities outside the authorized zones.",
	},
)

// ZonesConfigured is the number of zones in the registry.
var ZonesConfigured = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "zones_configured",
		Help:      "Current number of configured zones.",
	},
)

// AlertsTotal counts alert delivery decisions.
// Label:
//   - result: "published", "duplicate" or "error"
var AlertsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_total",
		Help:      "Total number of violation alerts, by delivery result.",
	},
	[]string{"result"},
)

// ── Feed metrics ──────────────────────────────────────────────────────────────

// FeedFetchesTotal counts upstream fetches.
// Labels:
//   - feed: "live", "poll" or "fallback"
//   - result: "ok" or "error"
var FeedFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_fetches_total",
		Help:      "Total number of upstream feed fetches, by feed and result.",
	},
	[]string{"feed", "result"},
)
