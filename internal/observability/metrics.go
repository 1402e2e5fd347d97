package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests   *family
	apiLatency    *latency
	apiInflight   *family
	apiReqTotal   *family
	apiReqError   *family
	leadsCreated  *family
	propertyViews *family
	realtimeDrops *family
	dbStats       *family
	redisUp       *family
	redisPing     *family
}

var apiLabels = []string{"method", "route", "status"}

var (
	initOnce sync.Once
	instance *Metrics
)

// New builds an unregistered metrics set. Most callers want Init.
func New() *Metrics {
	return &Metrics{
		apiRequests: newCounter("imoveis_api_requests_total", "Total API requests by method/route/status.", apiLabels...),
		apiLatency: newLatency("imoveis_api_request_duration_seconds", "API request latency in seconds.",
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}, apiLabels...),
		apiInflight:   newGauge("imoveis_api_inflight_requests", "In-flight API requests."),
		apiReqTotal:   newCounter("imoveis_api_requests_all_total", "All API requests."),
		apiReqError:   newCounter("imoveis_api_requests_error_total", "API requests answered with a 5xx status."),
		leadsCreated:  newCounter("imoveis_leads_created_total", "Leads captured by origin.", "origin"),
		propertyViews: newCounter("imoveis_property_views_total", "Property detail views recorded."),
		realtimeDrops: newCounter("imoveis_realtime_dropped_total", "Realtime messages dropped for slow consumers."),
		dbStats:       newGauge("imoveis_db_pool", "Database connection pool stats.", "stat"),
		redisUp:       newGauge("imoveis_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing:     newGauge("imoveis_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

// Init installs the process-wide metrics set. It returns nil when disabled so
// that every method below degrades to a no-op.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled", "endpoint", "/metrics")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	if err := m.apiRequests.writeTo(w); err != nil {
		return err
	}
	if err := m.apiLatency.writeTo(w); err != nil {
		return err
	}
	for _, f := range []*family{
		m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.leadsCreated, m.propertyViews, m.realtimeDrops,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := f.writeTo(w); err != nil {
			return err
		}
	}
	return nil
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
	m.apiRequests.add(1, method, route, status)
	m.apiLatency.observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.add(1)
	if isServerErrorStatus(status) {
		m.apiReqError.add(1)
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.add(-1)
}

func (m *Metrics) IncLeadCreated(origin string) {
	if m == nil {
		return
	}
	origin = strings.TrimSpace(origin)
	if origin == "" {
		origin = "unknown"
	}
	m.leadsCreated.add(1, origin)
}

func (m *Metrics) IncPropertyView() {
	if m == nil {
		return
	}
	m.propertyViews.add(1)
}

func (m *Metrics) IncRealtimeDrop() {
	if m == nil {
		return
	}
	m.realtimeDrops.add(1)
}

// StartDBCollector samples the sql.DB pool stats until ctx is cancelled.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
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
				m.dbStats.set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.set(float64(stats.InUse), "in_use")
				m.dbStats.set(float64(stats.Idle), "idle")
				m.dbStats.set(float64(stats.WaitCount), "wait_count")
				m.dbStats.set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings the realtime bus Redis until ctx is cancelled.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string, interval time.Duration) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.set(1)
				m.redisPing.set(time.Since(start).Seconds())
			}
		}
	}()
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	if len(status) < 3 {
		return false
	}
	return status[0] == '5'
}
