package controller

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the controller's prometheus collectors on a private registry.
type Metrics struct {
	FramesSubmitted prometheus.Counter
	FramesDropped   prometheus.Counter
	FramesFailed    prometheus.Counter
	FramesProcessed prometheus.Counter
	InFlight        prometheus.Gauge
	FPS             prometheus.Gauge
	CycleSeconds    prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates and registers all controller metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		FramesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yolo_frames_submitted_total",
			Help: "Frames offered to the admission gate",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yolo_frames_dropped_total",
			Help: "Frames dropped because every detection slot was busy",
		}),
		FramesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yolo_frames_failed_total",
			Help: "Detection cycles that returned an error",
		}),
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yolo_frames_processed_total",
			Help: "Detection cycles that produced predictions",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "yolo_in_flight",
			Help: "Detection cycles currently running",
		}),
		FPS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "yolo_fps",
			Help: "Completed detection cycles per second",
		}),
		CycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "yolo_cycle_seconds",
			Help:    "Time spent decoding and suppressing one tensor",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FramesSubmitted,
		m.FramesDropped,
		m.FramesFailed,
		m.FramesProcessed,
		m.InFlight,
		m.FPS,
		m.CycleSeconds,
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
