package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the Prometheus instruments for fusion-pass telemetry. A nil
// Recorder is valid and records nothing, so library callers that don't run
// the daemon can pass nil instead of wiring a registry.
type Recorder struct {
	passes          prometheus.Counter
	passLatency     prometheus.Histogram
	passSize        prometheus.Histogram
	strategyLatency *prometheus.HistogramVec
	degradations    *prometheus.CounterVec
	exclusions      *prometheus.CounterVec
}

// New registers the pass instruments with the given registerer. Tests pass
// their own registry; the daemon passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		passes: factory.NewCounter(prometheus.CounterOpts{
			Name: "recommendation_passes_total",
			Help: "Total number of fusion passes executed",
		}),

		passLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendation_pass_duration_seconds",
			Help:    "Fusion pass latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		}),

		passSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendation_pass_result_size",
			Help:    "Number of items in the fused result",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),

		strategyLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recommendation_strategy_duration_seconds",
			Help:    "Per-strategy compute latency in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"strategy"}),

		degradations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_strategy_degradations_total",
			Help: "Strategy contributions dropped from a pass",
		}, []string{"strategy", "reason"}),

		exclusions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_filter_exclusions_total",
			Help: "Candidates excluded by filter strategies",
		}, []string{"filter"}),
	}
}

func (r *Recorder) ObservePass(latency time.Duration, resultSize int) {
	if r == nil {
		return
	}
	r.passes.Inc()
	r.passLatency.Observe(latency.Seconds())
	r.passSize.Observe(float64(resultSize))
}

func (r *Recorder) ObserveStrategy(strategy string, latency time.Duration) {
	if r == nil {
		return
	}
	r.strategyLatency.WithLabelValues(strategy).Observe(latency.Seconds())
}

func (r *Recorder) ObserveDegradation(strategy, reason string) {
	if r == nil {
		return
	}
	r.degradations.WithLabelValues(strategy, reason).Inc()
}

func (r *Recorder) ObserveExclusions(filter string, count int) {
	if r == nil || count == 0 {
		return
	}
	r.exclusions.WithLabelValues(filter).Add(float64(count))
}
