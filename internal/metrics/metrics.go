package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

var (
	// HTTPRequestsTotal counts served requests by route pattern
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// CheckoutOutcomes counts submissions by outcome and failure kind
	CheckoutOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_outcomes_total",
			Help: "Checkout submissions by outcome",
		},
		[]string{"outcome", "kind"},
	)

	CheckoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Time spent submitting an order to the backend",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CartMutations counts cart operations by result (ok, locked)
	CartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations by operation and result",
		},
		[]string{"op", "result"},
	)

	ActiveWorkspaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_active_workspaces",
			Help: "Sessions holding an in-memory cart",
		},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	MenuCacheRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_menu_cache_refreshes_total",
			Help: "Menu catalogue refreshes by result",
		},
		[]string{"result"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_published_total",
			Help: "Events written to Kafka by type and result",
		},
		[]string{"type", "result"},
	)
)

// StateValue maps gobreaker states to gauge values
func StateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
