package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flipper_signals_total",
			Help: "Inbound signals by canonical signal and outcome",
		},
		[]string{"signal", "outcome"},
	)

	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flipper_transitions_total",
			Help: "Position transitions by direction and result (ok or the state that failed)",
		},
		[]string{"direction", "result"},
	)

	TransitionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flipper_transition_duration_seconds",
			Help:    "Wall time of a full position transition",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"direction"},
	)

	ExchangeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flipper_exchange_requests_total",
			Help: "Exchange REST requests by method, path and HTTP status (0 on transport failure)",
		},
		[]string{"method", "path", "status"},
	)

	ExchangeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flipper_exchange_request_duration_seconds",
			Help:    "Exchange REST request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PositionAmount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flipper_position_amount",
			Help: "Signed net position on the exchange as last polled",
		},
		[]string{"symbol"},
	)

	PositionPollErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flipper_position_poll_errors_total",
			Help: "Failed position polls",
		},
	)

	// AcceptedSignal flips between 0/1 per label so dashboards can show the
	// current side without string values.
	AcceptedSignal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flipper_accepted_signal",
			Help: "Currently accepted signal (1 for the active label)",
		},
		[]string{"signal"},
	)
)

func init() {
	prometheus.MustRegister(SignalsTotal, TransitionsTotal, TransitionDuration)
	prometheus.MustRegister(ExchangeRequestsTotal, ExchangeRequestDuration)
	prometheus.MustRegister(AcceptedSignal, PositionAmount, PositionPollErrors)
}

// ObserveExchangeRequest records one REST round trip. status is 0 when the
// request never got a response.
func ObserveExchangeRequest(method, path string, status int, elapsed time.Duration) {
	ExchangeRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	ExchangeRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// SetAcceptedSignal marks signal as the active one.
func SetAcceptedSignal(signal string) {
	for _, s := range []string{"none", "buy", "sell"} {
		v := 0.0
		if s == signal {
			v = 1
		}
		AcceptedSignal.WithLabelValues(s).Set(v)
	}
}
