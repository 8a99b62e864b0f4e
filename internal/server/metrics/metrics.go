// Package metrics собирает и отдает Prometheus-метрики сервера портала.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medportal"

// Collector — реализация на Prometheus. Методы безопасны для nil-получателя,
// чтобы компоненты могли работать без метрик.
type Collector struct {
	guardDecisions  *prometheus.CounterVec
	logins          *prometheus.CounterVec
	revocations     prometheus.Counter
	proxyErrors     prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector создает Collector и регистрирует метрики в reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Route guard decisions by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bff_logins_total",
			Help:      "Portal session logins by outcome.",
		}, []string{"outcome"}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_revocations_total",
			Help:      "Access tokens revoked on logout.",
		}),
		proxyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_proxy_errors_total",
			Help:      "Failed requests to the portal API backend.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.guardDecisions,
		c.logins,
		c.revocations,
		c.proxyErrors,
		c.requests,
		c.requestDuration,
	)

	return c
}

// RecordGuardDecision учитывает решение guard
func (c *Collector) RecordGuardDecision(outcome string) {
	if c == nil {
		return
	}
	c.guardDecisions.WithLabelValues(outcome).Inc()
}

// RecordLogin учитывает результат входа через BFF
func (c *Collector) RecordLogin(outcome string) {
	if c == nil {
		return
	}
	c.logins.WithLabelValues(outcome).Inc()
}

// RecordRevocation учитывает отзыв access token
func (c *Collector) RecordRevocation() {
	if c == nil {
		return
	}
	c.revocations.Inc()
}

// RecordProxyError учитывает ошибку обращения к бэкенду
func (c *Collector) RecordProxyError() {
	if c == nil {
		return
	}
	c.proxyErrors.Inc()
}

// RecordRequest учитывает обработанный HTTP запрос.
// route — шаблон маршрута, а не фактический путь.
func (c *Collector) RecordRequest(route, method string, statusCode int, d time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler возвращает HTTP обработчик для Prometheus scrape
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
