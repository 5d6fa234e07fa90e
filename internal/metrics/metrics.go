// Package metrics exposes Prometheus collectors for validations and the embedding cache.
// All methods are safe on a nil *Registry, which records nothing.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/ppiankov/genuinity/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the genuinity collectors on a private Prometheus registry
type Registry struct {
	reg *prometheus.Registry

	Validations      *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
	Duration         prometheus.Histogram
	GenuinityScore   prometheus.Histogram
	Fallbacks        *prometheus.CounterVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// New creates and registers all collectors
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genuinity_validations_total",
				Help: "Completed validations by verdict",
			},
			[]string{"verdict"},
		),

		ValidationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genuinity_validation_errors_total",
				Help: "Failed validations by error kind",
			},
			[]string{"kind"},
		),

		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "genuinity_validation_duration_seconds",
				Help:    "Wall time of a single validation",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),

		GenuinityScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "genuinity_score",
				Help:    "Distribution of genuinity scores",
				Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.65, 0.7, 0.8, 0.9, 1.0},
			},
		),

		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genuinity_signal_fallbacks_total",
				Help: "Neutral defaults substituted for missing data, by signal",
			},
			[]string{"signal"},
		),

		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "genuinity_embedding_cache_hits_total",
				Help: "Embedding cache hits",
			},
		),

		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "genuinity_embedding_cache_misses_total",
				Help: "Embedding cache misses",
			},
		),
	}

	r.reg.MustRegister(
		r.Validations,
		r.ValidationErrors,
		r.Duration,
		r.GenuinityScore,
		r.Fallbacks,
		r.CacheHits,
		r.CacheMisses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// ObserveResult records a successful validation
func (r *Registry) ObserveResult(res *model.ValidationResult, elapsed time.Duration) {
	if r == nil || res == nil {
		return
	}
	r.Validations.WithLabelValues(string(res.Verdict)).Inc()
	r.GenuinityScore.Observe(res.GenuinityScore)
	r.Duration.Observe(elapsed.Seconds())
	for _, s := range res.Signals {
		if s.Fallback {
			r.Fallbacks.WithLabelValues(string(s.Type)).Inc()
		}
	}
}

// ObserveError records a failed validation under its error kind
func (r *Registry) ObserveError(err error, elapsed time.Duration) {
	if r == nil || err == nil {
		return
	}
	r.ValidationErrors.WithLabelValues(ErrorKind(err)).Inc()
	r.Duration.Observe(elapsed.Seconds())
}

// CacheHit counts an embedding cache hit
func (r *Registry) CacheHit() {
	if r == nil {
		return
	}
	r.CacheHits.Inc()
}

// CacheMiss counts an embedding cache miss
func (r *Registry) CacheMiss() {
	if r == nil {
		return
	}
	r.CacheMisses.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ErrorKind names the error category used as a metric label
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, model.ErrModelInference):
		return "model_inference"
	case errors.Is(err, model.ErrFatalLoad):
		return "fatal_load"
	default:
		return "internal"
	}
}
