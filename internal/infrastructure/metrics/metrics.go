package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_http_requests_total",
		Help: "Count of HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_http_request_duration_seconds",
		Help:    "HTTP request latency distribution.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inkwell_realtime_connections",
		Help: "Currently open realtime connections.",
	})

	RealtimeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inkwell_realtime_rooms",
		Help: "Rooms with at least one member.",
	})

	RealtimeEventsRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_realtime_events_relayed_total",
		Help: "Events broadcast to room members, by event name.",
	}, []string{"event"})

	RealtimeEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_realtime_events_dropped_total",
		Help: "Events dropped for invalid payloads or receiver backpressure.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
