package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/model"
)

const namespace = "kalshimm"

// Order results.
const (
	OrderAccepted = "accepted"
	OrderRejected = "rejected"
	OrderError    = "error"
)

// Recorder owns every agent metric. It satisfies the observer interfaces of
// api, order, strategy and stream.
type Recorder struct {
	registry *prometheus.Registry

	cycles        *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	decisions     *prometheus.CounterVec
	fairValue     *prometheus.GaugeVec
	orders        *prometheus.CounterVec
	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
	streamEvents  *prometheus.CounterVec

	mu       sync.Mutex
	fairSeen map[string]struct{}
}

// NewRecorder creates a Recorder on its own registry, including Go runtime
// and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fairSeen: make(map[string]struct{}),

		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Strategy cycles by result (ok|error).",
			},
			[]string{"strategy", "result"},
		),
		cycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cycle_duration_seconds",
				Help:      "Wall time of one strategy cycle.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"strategy"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Per-market decisions by outcome.",
			},
			[]string{"outcome"},
		),
		fairValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "fair_value",
				Help:      "Last computed fair probability per market.",
			},
			[]string{"ticker"},
		),
		orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_total",
				Help:      "Order submissions by side and result (accepted|rejected|error).",
			},
			[]string{"side", "result"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "REST calls by method and status (0 = no response).",
			},
			[]string{"method", "status"},
		),
		requestTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "REST call latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		streamEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_events_total",
				Help:      "WebSocket stream events by type.",
			},
			[]string{"type"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.cycles,
		r.cycleDuration,
		r.decisions,
		r.fairValue,
		r.orders,
		r.requests,
		r.requestTime,
		r.streamEvents,
	)

	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveRequest implements api.RequestObserver.
func (r *Recorder) ObserveRequest(method string, status int, elapsed time.Duration) {
	r.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.requestTime.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveOrder implements order.Observer.
func (r *Recorder) ObserveOrder(side model.Side, err error) {
	r.orders.WithLabelValues(string(side), orderResult(err)).Inc()
}

func orderResult(err error) string {
	if err == nil {
		return OrderAccepted
	}
	var rejected *api.OrderRejected
	if errors.As(err, &rejected) {
		return OrderRejected
	}
	return OrderError
}

// ObserveCycle records one strategy cycle.
func (r *Recorder) ObserveCycle(strategy, result string, elapsed time.Duration) {
	r.cycles.WithLabelValues(strategy, result).Inc()
	r.cycleDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// ObserveDecision records one per-market decision outcome.
func (r *Recorder) ObserveDecision(outcome string) {
	r.decisions.WithLabelValues(outcome).Inc()
}

// ObserveFairValue records the latest fair probability of a market.
func (r *Recorder) ObserveFairValue(ticker string, fair float64) {
	r.mu.Lock()
	r.fairSeen[ticker] = struct{}{}
	r.mu.Unlock()
	r.fairValue.WithLabelValues(ticker).Set(fair)
}

// RetainFairValues drops the fair value series of every market not in
// tickers.
func (r *Recorder) RetainFairValues(tickers []string) {
	keep := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		keep[t] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for t := range r.fairSeen {
		if _, ok := keep[t]; ok {
			continue
		}
		r.fairValue.DeleteLabelValues(t)
		delete(r.fairSeen, t)
	}
}

// ObserveStreamEvent records one stream event.
func (r *Recorder) ObserveStreamEvent(eventType string) {
	r.streamEvents.WithLabelValues(eventType).Inc()
}
