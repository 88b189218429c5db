package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeOK            = "ok"
	outcomeFormatError   = "format_error"
	outcomeUpstreamError = "upstream_error"
	outcomeStoreError    = "store_error"
)

// metrics uses its own registry so several servers can live in one process.
type metrics struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	hits        prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_generations_total",
			Help: "Recipe generation requests by outcome.",
		}, []string{"outcome"}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "site_hits_total",
			Help: "Hit-count increments served.",
		}),
	}
	m.registry.MustRegister(m.generations, m.hits)
	return m
}

func (m *metrics) generation(outcome string) {
	m.generations.WithLabelValues(outcome).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
