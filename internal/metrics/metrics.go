// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts per-phase record outcomes and exports them in the
// Prometheus text format for a node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "outreach"

// Recorder holds the metrics of one invocation on a private registry.
type Recorder struct {
	reg      *prometheus.Registry
	records  *prometheus.CounterVec
	duration *prometheus.GaugeVec
	lastRun  prometheus.Gauge
}

// New registers the outreach metrics.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records processed per phase and outcome.",
		}, []string{"phase", "outcome"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time of the last run of each phase.",
		}, []string{"phase"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last phase finished.",
		}),
	}
	r.reg.MustRegister(r.records, r.duration, r.lastRun)
	return r
}

// ObservePhase adds outcome counts for a finished phase.
func (r *Recorder) ObservePhase(phase string, outcomes map[string]int, elapsed time.Duration) {
	for outcome, n := range outcomes {
		if n > 0 {
			r.records.WithLabelValues(phase, outcome).Add(float64(n))
		}
	}
	r.duration.WithLabelValues(phase).Set(elapsed.Seconds())
	r.lastRun.SetToCurrentTime()
}

// Registry exposes the underlying registry for tests and custom gatherers.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile writes all metrics to path. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
