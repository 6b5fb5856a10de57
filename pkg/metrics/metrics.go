package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds every Prometheus metric the scoring engine exports.
// A nil *Recorder is valid and records nothing.
// ⭐ SSOT: 메트릭 정의는 여기서만
type Recorder struct {
	registry *prometheus.Registry

	ScoringRuns        *prometheus.CounterVec
	InstrumentsScored  *prometheus.CounterVec
	ScoringDuration    prometheus.Histogram
	InstrumentDuration prometheus.Histogram
	BucketMean         *prometheus.GaugeVec
	BucketSamples      *prometheus.GaugeVec
	FundamentalsFetch  *prometheus.CounterVec
	JobRuns            *prometheus.CounterVec
}

// New creates a Recorder on its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		ScoringRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorecard_scoring_runs_total",
				Help: "Scoring batch runs by outcome",
			},
			[]string{"outcome"},
		),

		InstrumentsScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorecard_instruments_total",
				Help: "Instruments processed by a scoring batch, by result",
			},
			[]string{"result"},
		),

		ScoringDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scorecard_scoring_run_duration_seconds",
				Help:    "Wall time of a scoring batch",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
		),

		InstrumentDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scorecard_instrument_duration_seconds",
				Help:    "Time to fetch and score one instrument",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),

		BucketMean: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scorecard_bucket_mean_return_pct",
				Help: "Mean next-day return per score bucket of the latest analysis",
			},
			[]string{"bucket"},
		),

		BucketSamples: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scorecard_bucket_samples",
				Help: "Sample count per score bucket of the latest analysis",
			},
			[]string{"bucket"},
		),

		FundamentalsFetch: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorecard_fundamentals_fetch_total",
				Help: "Fundamentals lookups by source (l1, l2, remote) and outcome",
			},
			[]string{"source", "outcome"},
		),

		JobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorecard_job_runs_total",
				Help: "Scheduled job executions by job and status",
			},
			[]string{"job", "status"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ScoringRuns,
		r.InstrumentsScored,
		r.ScoringDuration,
		r.InstrumentDuration,
		r.BucketMean,
		r.BucketSamples,
		r.FundamentalsFetch,
		r.JobRuns,
	)

	return r
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests)
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordRun records a finished scoring batch
func (r *Recorder) RecordRun(written, errs int, stopped bool, d time.Duration) {
	if r == nil {
		return
	}
	outcome := "completed"
	if stopped {
		outcome = "stopped"
	}
	r.ScoringRuns.WithLabelValues(outcome).Inc()
	r.InstrumentsScored.WithLabelValues("written").Add(float64(written))
	r.InstrumentsScored.WithLabelValues("error").Add(float64(errs))
	r.ScoringDuration.Observe(d.Seconds())
}

// RecordRunFailed records a scoring batch whose persistence was rolled back
func (r *Recorder) RecordRunFailed() {
	if r == nil {
		return
	}
	r.ScoringRuns.WithLabelValues("failed").Inc()
}

// ObserveInstrument records the time spent on one instrument
func (r *Recorder) ObserveInstrument(d time.Duration) {
	if r == nil {
		return
	}
	r.InstrumentDuration.Observe(d.Seconds())
}

// SetBucket publishes one bucket of the latest analysis; a nil mean is exported as 0
func (r *Recorder) SetBucket(label string, mean *float64, samples int) {
	if r == nil {
		return
	}
	value := 0.0
	if mean != nil {
		value = *mean
	}
	r.BucketMean.WithLabelValues(label).Set(value)
	r.BucketSamples.WithLabelValues(label).Set(float64(samples))
}

// RecordFundamentals records one fundamentals lookup
func (r *Recorder) RecordFundamentals(source, outcome string) {
	if r == nil {
		return
	}
	r.FundamentalsFetch.WithLabelValues(source, outcome).Inc()
}

// RecordJob records one scheduled job execution
func (r *Recorder) RecordJob(job, status string) {
	if r == nil {
		return
	}
	r.JobRuns.WithLabelValues(job, status).Inc()
}
