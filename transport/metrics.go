package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for the datagram counter.
const (
	directionIn  = "in"
	directionOut = "out"

	resultOK        = "ok"
	resultOversize  = "oversize"
	resultSealError = "seal_error"
	resultOpenError = "open_error"
	resultExpired   = "expired"
	resultIOError   = "io_error"
)

// metrics holds the transport's Prometheus collectors.
type metrics struct {
	datagrams *prometheus.CounterVec // by direction and result
	bytes     *prometheus.CounterVec // wire bytes by direction
}

// newMetrics registers the collectors on reg. A nil reg leaves them
// unregistered, which still lets tests read them with testutil.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		datagrams: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kadseal",
				Subsystem: "transport",
				Name:      "datagrams_total",
				Help:      "Datagrams handled by the encrypted transport",
			},
			[]string{"direction", "result"},
		),
		bytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kadseal",
				Subsystem: "transport",
				Name:      "bytes_total",
				Help:      "Wire bytes handled by the encrypted transport",
			},
			[]string{"direction"},
		),
	}
}

func (m *metrics) observe(direction, result string, size int) {
	m.datagrams.WithLabelValues(direction, result).Inc()
	if size > 0 {
		m.bytes.WithLabelValues(direction).Add(float64(size))
	}
}
