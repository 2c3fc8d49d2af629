package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiremail_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wiremail_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wiremail_users_registered_total",
			Help: "Total users registered",
		},
	)

	EmailsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiremail_emails_relayed_total",
			Help: "Total emails persisted and confirmed to senders",
		},
		[]string{"delivery"}, // "live" or "offline"
	)

	PersistenceFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wiremail_persistence_failures_total",
			Help: "Total durable-store write failures surfaced to senders",
		},
	)

	FramesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wiremail_frames_dropped_total",
			Help: "Total malformed relay frames dropped",
		},
	)

	UploadsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wiremail_uploads_stored_total",
			Help: "Total attachment uploads stored",
		},
	)

	// Relay connection metrics
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wiremail_active_connections",
			Help: "Currently open relay connections",
		},
	)

	RegisteredIdentities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wiremail_registered_identities",
			Help: "Identities currently reachable in the registry",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiremail_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiremail_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)
)
