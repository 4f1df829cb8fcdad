package compose

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var postsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "composer_posts_created",
	Help: "Number of post records successfully created",
})

var postsFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "composer_posts_failed",
	Help: "Number of post creations that failed",
})

var threadsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "composer_threads_submitted",
	Help: "Number of thread submissions",
}, []string{"status"})
