package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Persistence
	SavesTotal   *prometheus.CounterVec
	SaveAttempts prometheus.Counter
	SaveDuration prometheus.Histogram

	// Layout
	Windows           prometheus.Gauge
	CustomizedWindows prometheus.Gauge
	Reconciliations   prometheus.Counter
	FocusChanges      prometheus.Counter
	Operations        *prometheus.CounterVec

	// Front ends
	WSConnections prometheus.Gauge
}

// New creates collectors registered on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "floatspace_layout_saves_total",
				Help: "Layout saves by result",
			},
			[]string{"result"},
		),
		SaveAttempts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "floatspace_layout_save_attempts_total",
				Help: "Calls made to the layout store, retries included",
			},
		),
		SaveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "floatspace_layout_save_duration_seconds",
				Help:    "Time spent writing a layout, retries included",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		Windows: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "floatspace_windows",
				Help: "Number of floating windows",
			},
		),
		CustomizedWindows: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "floatspace_windows_customized",
				Help: "Number of windows pinned out of the grid",
			},
		),
		Reconciliations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "floatspace_reconciliations_total",
				Help: "Tab-list and container updates applied",
			},
		),
		FocusChanges: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "floatspace_focus_changes_total",
				Help: "Windows brought to the front",
			},
		),
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "floatspace_window_operations_total",
				Help: "Window operations by kind",
			},
			[]string{"op"},
		),
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "floatspace_ws_connections",
				Help: "Connected WebSocket clients",
			},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSave records the outcome of one debounced save.
func (m *Metrics) RecordSave(attempts int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SavesTotal.WithLabelValues(result).Inc()
	m.SaveAttempts.Add(float64(attempts))
	m.SaveDuration.Observe(elapsed.Seconds())
}

// RecordLayout updates the window gauges.
func (m *Metrics) RecordLayout(windows, customized int) {
	if m == nil {
		return
	}
	m.Windows.Set(float64(windows))
	m.CustomizedWindows.Set(float64(customized))
}

// RecordOperation counts one window operation.
func (m *Metrics) RecordOperation(op string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op).Inc()
	switch op {
	case "focus":
		m.FocusChanges.Inc()
	case "tabs", "container":
		m.Reconciliations.Inc()
	}
}

// ClientConnected adjusts the WebSocket gauge.
func (m *Metrics) ClientConnected(delta int) {
	if m == nil {
		return
	}
	m.WSConnections.Add(float64(delta))
}
