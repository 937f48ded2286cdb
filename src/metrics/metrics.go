package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tweetsentiment"

// Stream message results
const (
	ResultWritten   = "written"
	ResultDuplicate = "duplicate"
	ResultError     = "error"
)

// Metrics holds the collectors for API calls, the stream and the analyzer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	APIRequests    *prometheus.CounterVec
	StreamMessages *prometheus.CounterVec
	StreamErrors   *prometheus.CounterVec
	Polarity       prometheus.Histogram
}

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "API requests issued, by endpoint.",
		}, []string{"endpoint"}),
		StreamMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_messages_total",
			Help:      "Stream messages handled, by result.",
		}, []string{"result"}),
		StreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_errors_total",
			Help:      "Stream error statuses reported to the listener.",
		}, []string{"status"}),
		Polarity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sentiment_polarity",
			Help:      "Polarity of analyzed tweets.",
			Buckets:   prometheus.LinearBuckets(-1, 0.25, 9),
		}),
	}
	reg.MustRegister(m.APIRequests, m.StreamMessages, m.StreamErrors, m.Polarity)
	return m
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveAPIRequest counts one request to endpoint
func (m *Metrics) ObserveAPIRequest(endpoint string) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(endpoint).Inc()
}

// ObserveStreamMessage counts one stream message with the given result
func (m *Metrics) ObserveStreamMessage(result string) {
	if m == nil {
		return
	}
	m.StreamMessages.WithLabelValues(result).Inc()
}

// ObserveStreamError counts one error status from the stream
func (m *Metrics) ObserveStreamError(status string) {
	if m == nil {
		return
	}
	m.StreamErrors.WithLabelValues(status).Inc()
}

// ObservePolarity records one polarity score
func (m *Metrics) ObservePolarity(p float64) {
	if m == nil {
		return
	}
	m.Polarity.Observe(p)
}
