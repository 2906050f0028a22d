package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry with the service's collectors.
// It implements ports.AllocationRecorder.
type Metrics struct {
	registry *prometheus.Registry

	allocations        *prometheus.CounterVec
	allocationDuration prometheus.Histogram
	planWarehouses     prometheus.Histogram
	cacheRequests      *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shipment_allocations_total",
			Help: "Allocation runs by outcome",
		}, []string{"outcome"}),
		allocationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shipment_allocation_duration_seconds",
			Help:    "Time spent in the warehouse subset search",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		planWarehouses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shipment_plan_warehouses",
			Help:    "Number of warehouses in returned plans",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_cache_requests_total",
			Help: "Plan cache lookups by result",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.allocations,
		m.allocationDuration,
		m.planWarehouses,
		m.cacheRequests,
		m.httpRequests,
		m.httpRequestDuration,
	)

	return m
}

func (m *Metrics) ObserveAllocation(outcome string, planWarehouses int, dur time.Duration) {
	m.allocations.WithLabelValues(outcome).Inc()
	m.allocationDuration.Observe(dur.Seconds())
	if planWarehouses > 0 {
		m.planWarehouses.Observe(float64(planWarehouses))
	}
}

func (m *Metrics) ObserveCache(result string) {
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, path string, status int, dur time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(dur.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
