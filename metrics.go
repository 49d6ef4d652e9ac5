package pokedex

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_lookups_total",
		Help: "Pokémon lookups by outcome (ok, cached, not_found, error).",
	}, []string{"outcome"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokedex_cache_hits_total",
		Help: "Cache hits for responses and sprites.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokedex_cache_misses_total",
		Help: "Cache misses for responses and sprites.",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokedex_http_request_duration_seconds",
		Help:    "Duration of requests served in serve mode.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
