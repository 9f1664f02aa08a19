package gateway

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	callsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yeehome_gateway_calls_total",
			Help: "Gateway request/response cycles by method and outcome.",
		},
		[]string{"method", "outcome"},
	)
	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yeehome_gateway_call_duration_seconds",
			Help:    "Latency of gateway request/response cycles, resends included.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"method"},
	)
	resendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yeehome_gateway_resends_total",
			Help: "Requests re-sent after an unsolicited push or wrong-method reply.",
		},
		[]string{"method"},
	)
	discoveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yeehome_gateway_discoveries_total",
			Help: "UDP discovery probes by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(callsTotal, callDuration, resendsTotal, discoveriesTotal)
}

func observeCall(method string, start time.Time, err error) {
	callDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	callsTotal.WithLabelValues(method, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotConnected):
		return "not_connected"
	case errors.Is(err, ErrProtocolTimeout):
		return "timeout"
	case errors.Is(err, ErrProtocolDecode):
		return "decode_error"
	case errors.Is(err, ErrCorrelation):
		return "unmatched"
	case errors.Is(err, ErrConnection):
		return "connection_error"
	default:
		return "error"
	}
}
