package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// timing accumulates a count and total duration for the JSON snapshot.
type timing struct {
	count atomic.Uint64
	nanos atomic.Uint64
}

func (t *timing) add(d time.Duration) {
	t.count.Add(1)
	if d > 0 {
		t.nanos.Add(uint64(d))
	}
}

func (t *timing) averageMs() float64 {
	n := t.count.Load()
	if n == 0 {
		return 0
	}
	return float64(t.nanos.Load()) / float64(n) / float64(time.Millisecond)
}

// MetricsService owns the Prometheus registry for the API process and keeps
// running totals for GET /system/metrics.
type MetricsService struct {
	handler http.Handler

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec
	cacheLookup  *prometheus.HistogramVec
	cacheWrite   prometheus.Histogram
	cacheRatio   prometheus.Gauge
	dbDuration   *prometheus.HistogramVec
	engineStage  *prometheus.HistogramVec
	auditErrors  *prometheus.CounterVec
	resolution   prometheus.Gauge
	rosterSize   prometheus.Gauge
	datasetLoads prometheus.Counter

	requests     timing
	dbQueries    timing
	engineRuns   timing
	cacheHits    atomic.Uint64
	cacheMisses  atomic.Uint64
	loadsApplied atomic.Uint64
}

// NewMetricsService registers every collector on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(registry)

	return &MetricsService{
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		}, []string{"method", "path", "status"}),
		httpTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookup: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cache_lookup_seconds",
			Help:    "Latency of report cache lookups by outcome",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"result"}),
		cacheWrite: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency of report cache writes",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		}),
		cacheRatio: f.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		dbDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "db_query_duration_seconds",
			Help: "Duration of dataset queries",
		}, []string{"query"}),
		engineStage: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "engine_duration_seconds",
			Help:      "Duration of attendance engine stages",
		}, []string{"stage"}),
		auditErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "audit_errors_total",
			Help:      "Records skipped or values left undefined, by kind",
		}, []string{"kind"}),
		resolution: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendance",
			Name:      "identity_resolution_ratio",
			Help:      "Share of raw scans resolved to an employee in the current dataset",
		}),
		rosterSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendance",
			Name:      "roster_employees",
			Help:      "Employees in the current dataset",
		}),
		datasetLoads: f.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "dataset_loads_total",
			Help:      "Datasets built and published",
		}),
	}
}

// Handler serves the Prometheus exposition format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, path, code).Inc()
	m.requests.add(duration)
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		m.cacheHits.Add(1)
	} else {
		m.cacheMisses.Add(1)
	}
	m.cacheLookup.WithLabelValues(result).Observe(duration.Seconds())
	m.cacheRatio.Set(m.hitRatio())
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records one repository call made while loading a dataset.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.dbQueries.add(duration)
}

// ObserveEngineRun records the duration of one engine stage ("load" or "report").
func (m *MetricsService) ObserveEngineRun(stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.engineStage.WithLabelValues(stage).Observe(duration.Seconds())
	m.engineRuns.add(duration)
}

// RecordDatasetLoad publishes the audit of a freshly loaded dataset.
func (m *MetricsService) RecordDatasetLoad(audit models.RunAudit, employees int) {
	if m == nil {
		return
	}
	m.datasetLoads.Inc()
	m.loadsApplied.Add(1)
	m.rosterSize.Set(float64(employees))
	if audit.ResolutionRate != nil {
		m.resolution.Set(*audit.ResolutionRate)
	}
	m.RecordAuditCounts(audit.Counts)
}

// RecordAuditCounts adds skip-and-count totals to the per-kind counters.
func (m *MetricsService) RecordAuditCounts(counts map[models.ErrorKind]int) {
	if m == nil {
		return
	}
	for kind, n := range counts {
		if n > 0 {
			m.auditErrors.WithLabelValues(string(kind)).Add(float64(n))
		}
	}
}

// Snapshot summarises the running totals.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	return models.SystemMetrics{
		CacheHitRatio:            m.hitRatio(),
		CacheHits:                m.cacheHits.Load(),
		CacheMisses:              m.cacheMisses.Load(),
		RequestsTotal:            m.requests.count.Load(),
		AverageRequestDurationMs: m.requests.averageMs(),
		DBQueryCount:             m.dbQueries.count.Load(),
		AverageDBQueryDurationMs: m.dbQueries.averageMs(),
		EngineRuns:               m.engineRuns.count.Load(),
		AverageEngineRunMs:       m.engineRuns.averageMs(),
		DatasetLoads:             m.loadsApplied.Load(),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func (m *MetricsService) hitRatio() float64 {
	hits := m.cacheHits.Load()
	total := hits + m.cacheMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
