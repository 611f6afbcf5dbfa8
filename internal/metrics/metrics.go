// Package metrics expone contadores Prometheus del API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder es la interfaz que usan los handlers HTTP.
type Recorder interface {
	RecordRequest(method, route string, status int, latency time.Duration)
	RecordAuthEvent(event string)
	RecordTaskOperation(op string)
}

// Eventos de autenticacion.
const (
	EventRegister     = "register"
	EventLoginSuccess = "login_success"
	EventLoginFailure = "login_failure"
	EventTokenDenied  = "token_denied"
)

// Collector implementa Recorder sobre un registro Prometheus.
type Collector struct {
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	authEvents *prometheus.CounterVec
	taskOps    *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmanager_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskmanager_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmanager_auth_events_total",
			Help: "Authentication outcomes.",
		}, []string{"event"}),
		taskOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmanager_task_operations_total",
			Help: "Successful task operations by kind.",
		}, []string{"operation"}),
	}

	reg.MustRegister(c.requests, c.latency, c.authEvents, c.taskOps)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, latency time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(latency.Seconds())
}

func (c *Collector) RecordAuthEvent(event string) {
	c.authEvents.WithLabelValues(event).Inc()
}

func (c *Collector) RecordTaskOperation(op string) {
	c.taskOps.WithLabelValues(op).Inc()
}

// Handler devuelve el endpoint /metrics para el registro dado.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop descarta todas las metricas.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordAuthEvent(string)                           {}
func (Nop) RecordTaskOperation(string)                       {}
