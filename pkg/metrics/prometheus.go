package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	barsIngested     *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	matchCount       *prometheus.GaugeVec
	analysisDuration *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		barsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hindsight_bars_ingested_total",
				Help: "Total number of daily bars ingested",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hindsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		matchCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hindsight_analog_match_count",
				Help: "Analog matches found in the latest analysis per symbol",
			},
			[]string{"symbol"},
		),
		analysisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hindsight_analysis_duration_seconds",
				Help:    "Duration of full analysis runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
	}
}

// RecordBarIngested counts one stored bar for a symbol.
func (r *Recorder) RecordBarIngested(symbol string) {
	r.barsIngested.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordAnalysisDuration records one analysis run's duration in seconds.
func (r *Recorder) RecordAnalysisDuration(symbol string, seconds float64) {
	r.analysisDuration.WithLabelValues(symbol).Observe(seconds)
}

// RecordMatchCount records the match-set size of the latest analysis.
func (r *Recorder) RecordMatchCount(symbol string, n int) {
	r.matchCount.WithLabelValues(symbol).Set(float64(n))
}
