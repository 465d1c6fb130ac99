// Package metrics собирает Prometheus-метрики сервиса каталога.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics хранит все метрики сервиса и собственный реестр.
type Metrics struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry
	runtime          bool

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	categoriesCreated prometheus.Counter
	productsCreated   prometheus.Counter
	conflicts         *prometheus.CounterVec

	outboxPublished prometheus.Counter
	outboxFailed    prometheus.Counter
}

// Option настраивает Metrics.
type Option func(*Metrics)

// WithNamespace задаёт namespace для всех метрик.
func WithNamespace(namespace string) Option {
	return func(m *Metrics) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets задаёт бакеты гистограмм длительности.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Metrics) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry задаёт реестр, в котором регистрируются метрики.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Metrics) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// WithRuntimeCollectors добавляет стандартные Go- и process-коллекторы.
func WithRuntimeCollectors() Option {
	return func(m *Metrics) {
		m.runtime = true
	}
}

func New(opts ...Option) *Metrics {
	m := &Metrics{
		namespace:        "catalog",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.init()
	return m
}

func (m *Metrics) init() {
	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"route", "method", "status_code"},
	)

	m.categoriesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "categories_created_total",
		Help:      "Total number of categories created",
	})

	m.productsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "products_created_total",
		Help:      "Total number of products created",
	})

	m.conflicts = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "conflicts_total",
			Help:      "Total number of rejected duplicates by entity",
		},
		[]string{"entity"},
	)

	m.outboxPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "outbox",
		Name:      "published_total",
		Help:      "Total number of outbox events published to Kafka",
	})

	m.outboxFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "outbox",
		Name:      "failed_total",
		Help:      "Total number of outbox events that failed to publish",
	})
}

func (m *Metrics) ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(elapsed.Seconds())
}

func (m *Metrics) CategoryCreated() { m.categoriesCreated.Inc() }

func (m *Metrics) ProductCreated() { m.productsCreated.Inc() }

// Conflict учитывает отклонённый дубликат по entity: "category" или "product".
func (m *Metrics) Conflict(entity string) { m.conflicts.WithLabelValues(entity).Inc() }

func (m *Metrics) OutboxPublished() { m.outboxPublished.Inc() }

func (m *Metrics) OutboxFailed() { m.outboxFailed.Inc() }

// Registry возвращает реестр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
