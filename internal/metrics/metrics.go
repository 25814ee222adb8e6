package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Reports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal", Name: "reports_total", Help: "Generated reports",
	}, []string{"type", "format"})
	RelationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal", Name: "relation_failures_total", Help: "Failed relation lookups during resolution",
	}, []string{"relation"})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"route", "code"})
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portal", Name: "bot_updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portal", Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "portal", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(Reports, RelationFailures, HTTPRequests, BotUpdates, HandlerErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
