// Package metrics exposes Prometheus collectors for resolves, the resolve
// cache and manifest reloads.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vladimir-polyakov/esencia/internal/component"
)

const namespace = "esencia"

// Metrics holds every collector on a private registry. A nil *Metrics records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	ResolveTotal       *prometheus.CounterVec
	ResolveDuration    prometheus.Histogram
	RegistryComponents prometheus.Gauge
	CacheRequests      *prometheus.CounterVec
	CatalogReloads     *prometheus.CounterVec
}

// New creates the collectors and registers them, plus Go runtime metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ResolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolve_total",
				Help:      "Resolve calls by outcome (ok or the error kind)",
			},
			[]string{"outcome"},
		),

		ResolveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolve_duration_seconds",
				Help:      "Time spent computing component trees",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
		),

		RegistryComponents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "components",
				Help:      "Components in the active registry",
			},
		),

		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "requests_total",
				Help:      "Resolve cache lookups by result (hit or miss)",
			},
			[]string{"result"},
		),

		CatalogReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "reloads_total",
				Help:      "Manifest reloads by outcome (ok or error)",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(
		m.ResolveTotal,
		m.ResolveDuration,
		m.RegistryComponents,
		m.CacheRequests,
		m.CatalogReloads,
		collectors.NewGoCollector(),
	)
	return m
}

// Gatherer returns the registry backing the collectors.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordResolve counts a resolve and its duration.
func (m *Metrics) RecordResolve(duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(component.KindOf(err))
	}
	m.ResolveTotal.WithLabelValues(outcome).Inc()
	m.ResolveDuration.Observe(duration.Seconds())
}

// RecordCacheHit counts a cache hit.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues("hit").Inc()
}

// RecordCacheMiss counts a cache miss.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues("miss").Inc()
}

// RecordReload counts a manifest reload and, on success, the component count
// of the new registry.
func (m *Metrics) RecordReload(components int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.CatalogReloads.WithLabelValues("error").Inc()
		return
	}
	m.CatalogReloads.WithLabelValues("ok").Inc()
	m.RegistryComponents.Set(float64(components))
}
