// Package monitoring exposes the engine's Prometheus collectors.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sync results
const (
	SyncSuccess     = "success"
	SyncAuthError   = "auth_error"
	SyncBadRequest  = "bad_request"
	SyncVendorError = "vendor_error"
)

// Generation results
const (
	GenerationSuccess  = "success"
	GenerationError    = "error"
	GenerationTimeout  = "timeout"
	GenerationDisabled = "disabled"
)

// Monitor owns a private registry with the engine's collectors. A nil
// *Monitor records nothing.
type Monitor struct {
	registry  *prometheus.Registry
	startTime time.Time

	syncs          *prometheus.CounterVec
	matchedItems   *prometheus.GaugeVec
	classification prometheus.Histogram
	generations    *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	m := &Monitor{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
		syncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menuperf_pos_syncs_total",
				Help: "POS sync attempts by provider and result",
			},
			[]string{"provider", "result"},
		),
		matchedItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "menuperf_pos_matched_items",
				Help: "Menu items matched by the last successful sync",
			},
			[]string{"provider"},
		),
		classification: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "menuperf_menu_engineering_duration_seconds",
				Help:    "Time spent building a menu engineering report",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
			},
		),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menuperf_advisory_generations_total",
				Help: "Advisory text generation calls by result",
			},
			[]string{"result"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menuperf_advisory_cache_items_total",
				Help: "Items served from the recommendation cache or sent for refresh",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(m.syncs, m.matchedItems, m.classification, m.generations, m.cacheLookups)
	return m
}

// Registry returns the registry holding every collector
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Uptime returns the time since the monitor was created
func (m *Monitor) Uptime() time.Duration {
	if m == nil {
		return 0
	}
	return time.Since(m.startTime)
}

// RecordSync counts one sync attempt. matched is recorded only on success.
func (m *Monitor) RecordSync(provider, result string, matched int) {
	if m == nil {
		return
	}
	m.syncs.WithLabelValues(provider, result).Inc()
	if result == SyncSuccess {
		m.matchedItems.WithLabelValues(provider).Set(float64(matched))
	}
}

func (m *Monitor) ObserveReport(d time.Duration) {
	if m == nil {
		return
	}
	m.classification.Observe(d.Seconds())
}

func (m *Monitor) RecordGeneration(result string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(result).Inc()
}

// RecordCache counts cached and refreshed items for one read
func (m *Monitor) RecordCache(hits, refreshes int) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Add(float64(hits))
	m.cacheLookups.WithLabelValues("refresh").Add(float64(refreshes))
}
