// Package metrics - Prometheus-метрики клиента: запросы к бэкенду, кеш,
// сброс сессии и загрузка SDK карты.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder - интерфейс сбора метрик, используется клиентом и use case'ами
type Recorder interface {
	RecordBackendRequest(path, outcome string, duration time.Duration)
	RecordCacheLookup(resource string, hit bool)
	RecordSessionInvalidated(code string)
	RecordMapLoad(outcome string)
}

// Исходы запросов к бэкенду
const (
	OutcomeSuccess     = "success"
	OutcomeApplication = "application_error"
	OutcomeTransport   = "transport_error"
)

// Collector - реализация Recorder на Prometheus
type Collector struct {
	backendRequests   *prometheus.CounterVec
	backendLatency    *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec
	sessionInvalidate *prometheus.CounterVec
	mapLoads          *prometheus.CounterVec
}

// NewCollector создает Collector и регистрирует метрики в reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodmap_backend_requests_total",
			Help: "Requests sent to the REST backend by path and outcome",
		}, []string{"path", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foodmap_backend_request_duration_seconds",
			Help:    "Latency of REST backend requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodmap_cache_lookups_total",
			Help: "List cache lookups by resource and result",
		}, []string{"resource", "result"}),
		sessionInvalidate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodmap_session_invalidations_total",
			Help: "Sessions cleared because of a session-invalid response code",
		}, []string{"code"}),
		mapLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodmap_map_sdk_loads_total",
			Help: "Map SDK load attempts by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.backendRequests,
		c.backendLatency,
		c.cacheLookups,
		c.sessionInvalidate,
		c.mapLoads,
	)

	return c
}

func (c *Collector) RecordBackendRequest(path, outcome string, duration time.Duration) {
	c.backendRequests.WithLabelValues(path, outcome).Inc()
	c.backendLatency.WithLabelValues(path).Observe(duration.Seconds())
}

func (c *Collector) RecordCacheLookup(resource string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(resource, result).Inc()
}

func (c *Collector) RecordSessionInvalidated(code string) {
	c.sessionInvalidate.WithLabelValues(code).Inc()
}

func (c *Collector) RecordMapLoad(outcome string) {
	c.mapLoads.WithLabelValues(outcome).Inc()
}

// Nop - Recorder, который ничего не делает
type Nop struct{}

func (Nop) RecordBackendRequest(string, string, time.Duration) {}
func (Nop) RecordCacheLookup(string, bool)                     {}
func (Nop) RecordSessionInvalidated(string)                    {}
func (Nop) RecordMapLoad(string)                               {}
