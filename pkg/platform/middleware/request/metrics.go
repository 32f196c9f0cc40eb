package request

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds per-route HTTP series. Routes are chi patterns, never raw
// paths, so entity ids do not become label values.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
	Responses       *prometheus.CounterVec
}

// NewMetrics registers on reg; nil means the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "courthouse_endpoint_latency_seconds",
			Help:    "Latency of court endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Responses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "courthouse_http_responses_total",
			Help: "Responses by route, method and status code",
		}, []string{"endpoint", "method", "status"}),
	}
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}

func (m *Metrics) IncrementResponse(endpoint, method string, status int) {
	m.Responses.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
}
