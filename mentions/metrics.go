package mentions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var searchesStarted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "composer_mention_searches_started",
	Help: "Number of mention typeahead searches issued",
})

var searchesFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "composer_mention_searches_failed",
	Help: "Number of mention typeahead searches that failed",
})

var staleResultsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "composer_mention_stale_results_dropped",
	Help: "Number of typeahead responses discarded because a newer search superseded them",
})
