// Package ecsmetrics exposes Prometheus instrumentation for the ECS
// runtime: live entity count, dispatcher buffer pressure, and per-process
// working-set size, plus a latency histogram for Update. Adapted from the
// host project's metrics package, re-pointed at ECS concerns instead of
// cluster/service concerns.
package ecsmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EntitiesTotal is the current number of live entities.
	EntitiesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ecs_entities_total",
		Help: "Total number of live entities.",
	})

	// DispatcherBytesInUse is the portion of the dispatcher's command
	// buffer currently reserved by undrained commands.
	DispatcherBytesInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ecs_dispatcher_bytes_in_use",
		Help: "Bytes of the dispatcher command buffer currently in use.",
	})

	// WorkingSetSize is the size of a process's working set after its
	// most recent remap, labeled by process name.
	WorkingSetSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ecs_process_working_set_size",
		Help: "Number of entities in a process's working set after remap.",
	}, []string{"process"})

	// UpdateDuration measures the wall-clock time of one full
	// World.Update call (lock through drain).
	UpdateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecs_update_duration_seconds",
		Help:    "Duration of a full World.Update call.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(EntitiesTotal)
	prometheus.MustRegister(DispatcherBytesInUse)
	prometheus.MustRegister(WorkingSetSize)
	prometheus.MustRegister(UpdateDuration)
}

// Timer measures elapsed wall-clock time against a start point, mirroring
// the host project's metrics.Timer.
type Timer struct {
	start time.Time
}

// NewTimer starts a new Timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
