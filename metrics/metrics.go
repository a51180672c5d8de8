// Package metrics exposes render counters through prometheus collectors. Recorders are
// registered against a caller-supplied registry; logbar never serves them itself.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Frame kinds recorded by the renderer.
const (
	FrameStack = "stack" // full repaint of the bar block
	FrameRow   = "row"   // single bar row rewritten in place
	FrameLog   = "log"   // log lines written above the block
)

// Recorder collects render metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	frames       *prometheus.CounterVec
	logLines     *prometheus.CounterVec
	attachedBars prometheus.Gauge
	bytesWritten prometheus.Counter
}

// NewRecorder creates a Recorder and registers its collectors with reg.
// Registering two recorders on the same registry panics, as with promauto.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		frames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbar_frames_total",
				Help: "Total number of render frames written to the terminal",
			},
			[]string{"kind"},
		),
		logLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbar_log_lines_total",
				Help: "Total number of log lines written, by level",
			},
			[]string{"level"},
		),
		attachedBars: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "logbar_attached_bars",
				Help: "Number of progress bars currently attached to the render stack",
			},
		),
		bytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logbar_bytes_written_total",
				Help: "Total bytes written to the terminal, escape sequences included",
			},
		),
	}
}

// Frame records one frame of the given kind and the bytes it wrote.
func (r *Recorder) Frame(kind string, bytes int) {
	if r == nil {
		return
	}
	r.frames.WithLabelValues(kind).Inc()
	if bytes > 0 {
		r.bytesWritten.Add(float64(bytes))
	}
}

// LogLine records one console log line at level.
func (r *Recorder) LogLine(level string) {
	if r == nil {
		return
	}
	r.logLines.WithLabelValues(level).Inc()
}

// Attached sets the number of attached bars.
func (r *Recorder) Attached(n int) {
	if r == nil {
		return
	}
	r.attachedBars.Set(float64(n))
}
