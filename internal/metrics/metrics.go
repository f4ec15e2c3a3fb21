// Package metrics expõe contadores Prometheus da API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder é o que os serviços e middlewares usam para registrar eventos.
type Recorder interface {
	RecordHTTP(method, route string, status int, duration time.Duration)
	RecordLogin(result string)
	RecordUpload(estado string)
	RecordDecision(estado string)
}

// Collector implementa Recorder sobre um registry Prometheus.
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	logins       *prometheus.CounterVec
	uploads      *prometheus.CounterVec
	decisions    *prometheus.CounterVec
}

// NewCollector cria e registra as métricas em reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repositorio_http_requests_total",
			Help: "Requisições HTTP por método, rota e status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "repositorio_http_request_duration_seconds",
			Help:    "Latência das requisições HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repositorio_logins_total",
			Help: "Tentativas de login por resultado.",
		}, []string{"result"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repositorio_uploads_total",
			Help: "Documentos enviados por estado inicial.",
		}, []string{"estado"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repositorio_aprovacoes_total",
			Help: "Decisões de aprovação registradas.",
		}, []string{"estado"}),
	}

	reg.MustRegister(c.httpRequests, c.httpLatency, c.logins, c.uploads, c.decisions)
	return c
}

func (c *Collector) RecordHTTP(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordUpload(estado string) {
	c.uploads.WithLabelValues(estado).Inc()
}

func (c *Collector) RecordDecision(estado string) {
	c.decisions.WithLabelValues(estado).Inc()
}

// Nop descarta tudo; usado em testes e quando métricas estão desligadas.
type Nop struct{}

func (Nop) RecordHTTP(string, string, int, time.Duration) {}
func (Nop) RecordLogin(string)                             {}
func (Nop) RecordUpload(string)                            {}
func (Nop) RecordDecision(string)                          {}

// Handler devolve o endpoint de scrape.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
