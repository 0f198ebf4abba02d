// Package metrics implements Prometheus metrics for the ingest pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsIngestedTotal counts records accepted by a source.
	RecordsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_records_ingested_total",
			Help: "Total number of records accepted by a source",
		},
		[]string{"source"},
	)

	// RecordsRoutedTotal counts records successfully matched and written by
	// the Router's dispatch loop.
	RecordsRoutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_records_routed_total",
			Help: "Total number of records successfully routed to a writer",
		},
		[]string{"source", "topic"},
	)

	// RecordsDroppedTotal counts UnrouteableRecord drops and write failures.
	RecordsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_records_dropped_total",
			Help: "Total number of records dropped (unrouteable or write failure)",
		},
		[]string{"source", "reason"},
	)

	// TransformLatencySeconds measures time spent in TransformerWriter
	// conversion and forwarding.
	TransformLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingestd_transform_latency_seconds",
			Help:    "Latency of transform-and-forward stages in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20),
		},
		[]string{"writer", "transformer"},
	)

	// ComponentState tracks each lifecycle component's current runstate.State
	// as a numeric gauge (see StateValue below).
	ComponentState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ingestd_component_state",
			Help: "Current lifecycle state of a component (see StateValue)",
		},
		[]string{"kind", "name"},
	)

	// WorkPoolQueueDepth tracks per-shard, per-kind WorkPool queue depth.
	WorkPoolQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ingestd_workpool_queue_depth",
			Help: "Current depth of a WorkPool's per-kind staging queue",
		},
		[]string{"pool", "kind"},
	)

	// RouteTableRefreshTotal counts Router refresh cycles by outcome.
	RouteTableRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_route_table_refresh_total",
			Help: "Total number of route table refresh cycles",
		},
		[]string{"outcome"}, // "applied" | "retained"
	)
)

// StateValue maps a runstate.State to the numeric value ComponentState
// reports (Created=0 through FailedInitialization=5, matching runstate's
// iota order).
func StateValue(s int) float64 {
	return float64(s)
}
