package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spotify_stats"

type metrics struct {
	renders   *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
	errors    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	auto := promauto.With(reg)
	return &metrics{
		renders: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Pages rendered, excluding cache hits.",
		}, []string{"page"}),
		cacheHits: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_cache_hits_total",
			Help:      "Pages served from the page cache.",
		}, []string{"page"}),
		errors: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_errors_total",
			Help:      "Pages that failed to render, by cause.",
		}, []string{"page", "cause"}),
	}
}
