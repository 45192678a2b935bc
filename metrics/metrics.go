// Package metrics holds the Prometheus collectors and the request
// instrumentation middleware.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "murmur"

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	Signups = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Successful signups.",
	})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	MurmursPosted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "murmurs_posted_total",
		Help:      "Murmurs successfully created.",
	})

	Likes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "likes_total",
		Help:      "Successful like and unlike actions.",
	}, []string{"action"})

	Follows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "follows_total",
		Help:      "Successful follow and unfollow actions.",
	}, []string{"action"})

	LikeCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "like_cache_total",
		Help:      "Like-count cache lookups by result (hit, miss, discarded, error).",
	}, []string{"result"})
)

// Instrument records request latency by route template, so /murmurs/1 and
// /murmurs/2 share a series.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
