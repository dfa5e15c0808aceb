package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the domain
// operations. A nil *MetricsService is a valid no-op receiver, so services
// can count unconditionally.
type MetricsService struct {
	registry    *prometheus.Registry
	handler     http.Handler
	opsTotal    *prometheus.CounterVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	opsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domain_operations_total",
		Help: "Total number of domain operations by name",
	}, []string{"operation"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grade_cache_hits_total",
		Help: "Total final-grade cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grade_cache_misses_total",
		Help: "Total final-grade cache misses",
	})

	registry.MustRegister(opsTotal, cacheHits, cacheMisses)

	return &MetricsService{
		registry:    registry,
		handler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		opsTotal:    opsTotal,
		cacheHits:   cacheHits,
		cacheMisses: cacheMisses,
	}
}

// CountOp increments the counter for a completed domain operation.
func (m *MetricsService) CountOp(operation string) {
	if m == nil {
		return
	}
	m.opsTotal.WithLabelValues(operation).Inc()
}

// CountCache records a final-grade cache lookup outcome.
func (m *MetricsService) CountCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}
