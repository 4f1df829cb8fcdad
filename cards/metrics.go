package cards

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cardFetchesStarted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "composer_card_fetches_started",
	Help: "Number of link card fetches started",
})

var cardFetchesSucceeded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "composer_card_fetches_succeeded",
	Help: "Number of link card fetches that returned a card",
})

var cardFetchesFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "composer_card_fetches_failed",
	Help: "Number of link card fetches that failed or were canceled",
})

var cardsEvicted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "composer_cards_evicted",
	Help: "Number of cards evicted after their URL left the text",
})
