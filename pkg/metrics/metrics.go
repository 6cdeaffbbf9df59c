package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Booking outcomes
const (
	OutcomeCommitted   = "committed"
	OutcomeReplayed    = "replayed"
	OutcomeConflict    = "conflict"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
	OutcomeFailure     = "persistence_failure"
)

// Metrics структура для метрик Prometheus
// Все методы безопасны для nil-получателя: если метрики выключены, вызовы ничего не делают
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  prometheus.Gauge
	DBInUseConnections prometheus.Gauge
	DBWaitCount        prometheus.Gauge

	BookingCommits    *prometheus.CounterVec
	ConflictedSlots   prometheus.Counter
	LiveIndexes       prometheus.Gauge
	FeedEventsApplied *prometheus.CounterVec
	IndexResyncs      prometheus.Counter
}

// New создает метрики и регистрирует их в глобальном реестре
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики в указанном реестре (для тестов)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Duration of database queries",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"operation"}),

		DBOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}),

		DBInUseConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}),

		DBWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),

		BookingCommits: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_commits_total",
			Help:        "Booking commit attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		ConflictedSlots: factory.NewCounter(prometheus.CounterOpts{
			Name:        "booking_conflicted_slots_total",
			Help:        "Slots that lost a commit race",
			ConstLabels: constLabels,
		}),

		LiveIndexes: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "availability_live_indexes",
			Help:        "Number of live availability indexes",
			ConstLabels: constLabels,
		}),

		FeedEventsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_feed_events_total",
			Help:        "Reservation changes applied to availability indexes",
			ConstLabels: constLabels,
		}, []string{"kind"}),

		IndexResyncs: factory.NewCounter(prometheus.CounterOpts{
			Name:        "availability_index_resyncs_total",
			Help:        "Snapshot reloads of availability indexes",
			ConstLabels: constLabels,
		}),
	}
}

// ObserveHTTPRequest фиксирует HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет метрики пула соединений
func (m *Metrics) SetDBPoolStats(open, inUse int, waitCount int64) {
	if m == nil {
		return
	}
	m.DBOpenConnections.Set(float64(open))
	m.DBInUseConnections.Set(float64(inUse))
	m.DBWaitCount.Set(float64(waitCount))
}

// IncBookingCommit фиксирует результат попытки бронирования
func (m *Metrics) IncBookingCommit(outcome string) {
	if m == nil {
		return
	}
	m.BookingCommits.WithLabelValues(outcome).Inc()
}

// AddConflictedSlots фиксирует слоты, проигравшие гонку
func (m *Metrics) AddConflictedSlots(n int) {
	if m == nil {
		return
	}
	m.ConflictedSlots.Add(float64(n))
}

// SetLiveIndexes обновляет число живых индексов доступности
func (m *Metrics) SetLiveIndexes(n int) {
	if m == nil {
		return
	}
	m.LiveIndexes.Set(float64(n))
}

// IncFeedEvent фиксирует применённое изменение из ленты
func (m *Metrics) IncFeedEvent(kind string) {
	if m == nil {
		return
	}
	m.FeedEventsApplied.WithLabelValues(kind).Inc()
}

// IncIndexResync фиксирует перезагрузку снимка индекса
func (m *Metrics) IncIndexResync() {
	if m == nil {
		return
	}
	m.IndexResyncs.Inc()
}
