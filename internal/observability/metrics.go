package observability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry
	interval time.Duration

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	rollupOutcomes *prometheus.CounterVec
	rollupLatency  *prometheus.HistogramVec

	geocodeRequests *prometheus.CounterVec

	dbStats   *prometheus.GaugeVec
	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

const defaultScrapeInterval = 15 * time.Second

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics set once. The DB and Redis collectors sample
// every interval. Every Metrics method is safe on a nil receiver, so callers pass
// nil when metrics are disabled.
func Init(log *logger.Logger, interval time.Duration) *Metrics {
	initOnce.Do(func() {
		instance = New(prometheus.NewRegistry())
		if interval > 0 {
			instance.interval = interval
		}
		if log != nil {
			log.Info("metrics enabled", "scrape_interval", instance.interval.String())
		}
	})
	return instance
}

// New registers the metric set on reg. Tests pass a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		interval: defaultScrapeInterval,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dc_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dc_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "dc_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		rollupOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dc_rollup_recomputations_total",
			Help: "Rollup recomputations by rollup name and outcome.",
		}, []string{"rollup", "outcome"}),
		rollupLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dc_rollup_recompute_duration_seconds",
			Help:    "Rollup recomputation latency in seconds by rollup name and outcome.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"rollup", "outcome"}),
		geocodeRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dc_geocode_requests_total",
			Help: "Geocoder lookups by source (cache/provider) and status.",
		}, []string{"source", "status"}),
		dbStats: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dc_db_pool",
			Help: "database/sql pool statistics.",
		}, []string{"stat"}),
		redisUp: f.NewGauge(prometheus.GaugeOpts{
			Name: "dc_redis_up",
			Help: "1 when the last redis ping succeeded.",
		}),
		redisPing: f.NewGauge(prometheus.GaugeOpts{
			Name: "dc_redis_ping_seconds",
			Help: "Latency of the last redis ping.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveRollup counts one recomputation and records how long it took.
func (m *Metrics) ObserveRollup(rollup, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.rollupOutcomes.WithLabelValues(rollup, outcome).Inc()
	m.rollupLatency.WithLabelValues(rollup, outcome).Observe(dur.Seconds())
}

func (m *Metrics) IncGeocode(source, status string) {
	if m == nil {
		return
	}
	m.geocodeRequests.WithLabelValues(source, status).Inc()
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := m.interval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.dbStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.dbStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.dbStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.dbStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
				m.dbStats.WithLabelValues("max_open_connections").Set(float64(stats.MaxOpenConnections))
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := m.interval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
