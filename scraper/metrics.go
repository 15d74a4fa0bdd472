package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the extraction service on a
// dedicated registry, so tests and embedders never fight over the
// global default.
type Metrics struct {
	Registry         *prometheus.Registry
	ExtractionsTotal *prometheus.CounterVec
	ExtractionTime   *prometheus.HistogramVec
	MethodsTotal     *prometheus.CounterVec
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	extractions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraperlab_extractions_total",
			Help: "Total extraction runs by site, type, and result.",
		},
		[]string{"site", "type", "result"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scraperlab_extraction_duration_seconds",
			Help:    "End-to-end extraction latency by site.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"site"},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraperlab_cache_hits_total",
			Help: "Extraction requests served from the outcome cache.",
		},
	)
	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraperlab_cache_misses_total",
			Help: "Extraction requests that missed the outcome cache.",
		},
	)
	methods := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraperlab_extraction_methods_total",
			Help: "Fallback stage reached per run, by site and method label.",
		},
		[]string{"site", "method"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraperlab_errors_total",
			Help: "Extraction failures by error code.",
		},
		[]string{"code"},
	)

	registry.MustRegister(extractions, duration, methods, cacheHits, cacheMisses, errorsTotal)

	return &Metrics{
		Registry:         registry,
		ExtractionsTotal: extractions,
		ExtractionTime:   duration,
		MethodsTotal:     methods,
		CacheHitsTotal:   cacheHits,
		CacheMissesTotal: cacheMisses,
		ErrorsTotal:      errorsTotal,
	}
}

// ObserveRun records one finished extraction. method is the fallback
// stage reached, set on success and failure alike.
func (m *Metrics) ObserveRun(site, typ string, success bool, method string, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.ExtractionsTotal.WithLabelValues(site, typ, result).Inc()
	m.ExtractionTime.WithLabelValues(site).Observe(d.Seconds())
	if method != "" {
		m.MethodsTotal.WithLabelValues(site, method).Inc()
	}
}

// IncCache records a cache lookup result.
func (m *Metrics) IncCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
}

// IncError increments the failure counter for an error code.
func (m *Metrics) IncError(code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(code).Inc()
}
