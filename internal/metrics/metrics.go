// Package metrics collects batch counters in a private Prometheus registry
// and writes them as a node_exporter textfile when the run ends. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "contactsheet"

// Metrics holds every collector for one process.
type Metrics struct {
	reg *prometheus.Registry

	sheets        *prometheus.CounterVec
	frames        *prometheus.CounterVec
	frameFailures *prometheus.CounterVec
	frameRetries  prometheus.Counter
	sheetBytes    prometheus.Counter
	stageDuration *prometheus.HistogramVec
	lastRun       prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		sheets: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_total",
			Help:      "Videos processed, by outcome (done, skipped, failed).",
		}, []string{"status"}),
		frames: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames scheduled for extraction, by result (extracted, failed).",
		}, []string{"result"}),
		frameFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_failures_total",
			Help:      "Failed frame extractions, by classified cause.",
		}, []string{"kind"}),
		frameRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_retries_total",
			Help:      "Fallback ffmpeg runs made after a first attempt failed.",
		}),
		sheetBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheet_bytes_total",
			Help:      "Bytes of JPEG written.",
		}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per generator stage.",
			Buckets:   []float64{0.05, 0.25, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the textfile was written.",
		}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// SheetFinished counts one video by its final status.
func (m *Metrics) SheetFinished(status string, bytes int64) {
	if m == nil {
		return
	}
	m.sheets.WithLabelValues(status).Inc()
	if bytes > 0 {
		m.sheetBytes.Add(float64(bytes))
	}
}

// FrameExtracted counts a cell that produced a frame after attempts runs.
func (m *Metrics) FrameExtracted(attempts int) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues("extracted").Inc()
	m.addRetries(attempts)
}

// FrameFailed counts a blank cell and its cause.
func (m *Metrics) FrameFailed(kind string, attempts int) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues("failed").Inc()
	m.frameFailures.WithLabelValues(kind).Inc()
	m.addRetries(attempts)
}

func (m *Metrics) addRetries(attempts int) {
	if attempts > 1 {
		m.frameRetries.Add(float64(attempts - 1))
	}
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile stamps the run time and writes every metric to path in the
// text exposition format. The write goes through a temp file and rename,
// as node_exporter's textfile collector expects.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	m.lastRun.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, m.reg)
}
