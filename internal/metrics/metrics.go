package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Feed fetch outcomes.
const (
	FeedLive   = "live"
	FeedCached = "cached"
	FeedSample = "sample"
)

var (
	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dashboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dashboard", Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "path", "status"},
	)
	feedFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dashboard", Name: "chat_feed_fetch_total", Help: "Chat feed reads by outcome (live, cached, sample)"},
		[]string{"outcome"},
	)
	feedUpstreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "dashboard", Name: "chat_feed_upstream_duration_seconds", Help: "Duration of webhook fetches"},
	)
	settingsUpdateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dashboard", Name: "settings_updates_total", Help: "Settings updates by path (theme, full) and outcome"},
		[]string{"path", "outcome"},
	)
	logoCleanupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dashboard", Name: "logo_cleanup_total", Help: "Old logo removals by outcome"},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(reqDuration, reqTotal, feedFetchTotal, feedUpstreamDuration, settingsUpdateTotal, logoCleanupTotal)
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		reqDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		reqTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func FeedFetched(outcome string) {
	feedFetchTotal.WithLabelValues(outcome).Inc()
}

func ObserveUpstream(d time.Duration) {
	feedUpstreamDuration.Observe(d.Seconds())
}

func SettingsUpdated(themeOnly bool, err error) {
	path := "full"
	if themeOnly {
		path = "theme"
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	settingsUpdateTotal.WithLabelValues(path, outcome).Inc()
}

func LogoCleanup(err error) {
	if err != nil {
		logoCleanupTotal.WithLabelValues("error").Inc()
		return
	}
	logoCleanupTotal.WithLabelValues("ok").Inc()
}
