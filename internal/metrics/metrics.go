// Package metrics exposes Prometheus instrumentation for live voice
// sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every session metric. One instance per process.
type Collector struct {
	registry *prometheus.Registry

	StatusTransitions *prometheus.CounterVec
	TranscriptEntries *prometheus.CounterVec
	IntentsDetected   *prometheus.CounterVec
	AudioBytesOut     prometheus.Counter
	SessionErrors     prometheus.Counter
}

// NewCollector builds a Collector on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "renovoice_status_transitions_total",
			Help: "Session status transitions by target status.",
		}, []string{"to"}),
		TranscriptEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "renovoice_transcript_entries_total",
			Help: "Transcript entries appended, by speaker role.",
		}, []string{"role"}),
		IntentsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "renovoice_intents_detected_total",
			Help: "Distinct intents detected across sessions.",
		}, []string{"intent"}),
		AudioBytesOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "renovoice_audio_bytes_out_total",
			Help: "Model audio bytes received for playback.",
		}),
		SessionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "renovoice_session_errors_total",
			Help: "Fatal session errors.",
		}),
	}
}

// Handler returns the /metrics HTTP handler for this collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve runs a metrics HTTP server on addr. Blocks until the listener
// fails.
func (c *Collector) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return http.ListenAndServe(addr, mux)
}
