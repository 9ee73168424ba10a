package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes Prometheus metrics for fetch and render activity.
type Recorder struct {
	fetchesTotal    *prometheus.CounterVec
	fetchErrors     *prometheus.CounterVec
	seriesSkipped   *prometheus.CounterVec
	chartsRendered  *prometheus.CounterVec
	lastObservation *prometheus.GaugeVec
	duration        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hydropull_fetches_total",
				Help: "Total number of hydromet API fetches",
			},
			[]string{"endpoint"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hydropull_fetch_errors_total",
				Help: "Total number of failed hydromet API fetches",
			},
			[]string{"endpoint"},
		),
		seriesSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hydropull_series_skipped_total",
				Help: "Series skipped because no usable data was available",
			},
			[]string{"kind"},
		),
		chartsRendered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hydropull_charts_rendered_total",
				Help: "Chart images rendered and written",
			},
			[]string{"chart"},
		),
		lastObservation: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hydropull_last_observation_value",
				Help: "Last observed value per logical series",
			},
			[]string{"series"},
		),
		duration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hydropull_operation_duration_seconds",
				Help:    "Duration of fetch and render operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records a completed API fetch.
func (r *Recorder) RecordFetch(endpoint string) {
	r.fetchesTotal.WithLabelValues(endpoint).Inc()
}

// RecordFetchError records a failed API fetch.
func (r *Recorder) RecordFetchError(endpoint string) {
	r.fetchErrors.WithLabelValues(endpoint).Inc()
}

// RecordSkipped records a series skipped for lack of data.
func (r *Recorder) RecordSkipped(kind string) {
	r.seriesSkipped.WithLabelValues(kind).Inc()
}

// RecordChart records a rendered chart image.
func (r *Recorder) RecordChart(chart string) {
	r.chartsRendered.WithLabelValues(chart).Inc()
}

// RecordLastObservation records the most recent value of a logical series.
func (r *Recorder) RecordLastObservation(series string, value float64) {
	r.lastObservation.WithLabelValues(series).Set(value)
}

// RecordDuration records operation duration in seconds.
func (r *Recorder) RecordDuration(op string, seconds float64) {
	r.duration.WithLabelValues(op).Observe(seconds)
}
