package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the workshop.
//
// Every method is safe on a nil *Metrics, so components can run without
// instrumentation.
type Metrics struct {
	// Order flow metrics
	OrdersReceived  prometheus.Counter
	OrdersDelivered prometheus.Counter
	OrdersFailed    *prometheus.CounterVec
	QueueDepth      prometheus.Gauge
	WorkersBusy     prometheus.Gauge

	// Pricing metrics
	Broadcasts         *prometheus.CounterVec
	PriceLists         *prometheus.CounterVec
	CoverageWaits      prometheus.Gauge
	CoverageWaitTime   prometheus.Histogram
	CoverageStalls     prometheus.Counter
	MaterialsCompleted prometheus.Counter

	// Solver metrics
	SolveDuration *prometheus.HistogramVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a metrics collector registered with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OrdersReceived: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "weldshop_orders_received_total",
				Help: "Total number of orders accepted from customers",
			},
		),
		OrdersDelivered: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "weldshop_orders_delivered_total",
				Help: "Total number of solved orders delivered to customers",
			},
		),
		OrdersFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weldshop_orders_failed_total",
				Help: "Total number of orders that failed, by pipeline stage",
			},
			[]string{"stage"},
		),
		QueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "weldshop_queue_depth",
				Help: "Number of orders waiting in the bounded queue",
			},
		),
		WorkersBusy: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "weldshop_workers_busy",
				Help: "Number of workers currently processing an order",
			},
		),
		Broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weldshop_price_requests_total",
				Help: "Total number of price list requests sent to suppliers",
			},
			[]string{"material"},
		),
		PriceLists: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weldshop_price_lists_total",
				Help: "Total number of supplier price lists received, by merge result",
			},
			[]string{"result"},
		),
		CoverageWaits: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "weldshop_coverage_waiting_workers",
				Help: "Number of workers blocked until a material is fully quoted",
			},
		),
		CoverageWaitTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "weldshop_coverage_wait_seconds",
				Help:    "Time a worker waited for complete price coverage",
				Buckets: []float64{.0001, .001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
		),
		CoverageStalls: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "weldshop_coverage_stalls_total",
				Help: "Total number of coverage waits that exceeded the stall threshold",
			},
		),
		MaterialsCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "weldshop_materials_completed_total",
				Help: "Total number of materials whose price list became complete",
			},
		),
		SolveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weldshop_solve_duration_seconds",
				Help:    "Solver duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"status"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weldshop_http_requests_total",
				Help: "Total number of HTTP requests to the stats endpoint",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weldshop_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
	}
}

// IncOrdersReceived counts an order accepted from a customer
func (m *Metrics) IncOrdersReceived() {
	if m == nil {
		return
	}
	m.OrdersReceived.Inc()
}

// IncOrdersDelivered counts a delivered order
func (m *Metrics) IncOrdersDelivered() {
	if m == nil {
		return
	}
	m.OrdersDelivered.Inc()
}

// IncOrdersFailed counts a failed order at stage
func (m *Metrics) IncOrdersFailed(stage string) {
	if m == nil {
		return
	}
	m.OrdersFailed.WithLabelValues(stage).Inc()
}

// SetQueueDepth sets the number of queued orders
func (m *Metrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(depth))
}

// WorkerBusy marks a worker busy; the returned func marks it idle again
func (m *Metrics) WorkerBusy() func() {
	if m == nil {
		return func() {}
	}
	m.WorkersBusy.Inc()
	return m.WorkersBusy.Dec
}

// RecordBroadcast counts one price list request per supplier
func (m *Metrics) RecordBroadcast(material uint32, suppliers int) {
	if m == nil {
		return
	}
	m.Broadcasts.WithLabelValues(strconv.FormatUint(uint64(material), 10)).Add(float64(suppliers))
}

// RecordPriceList counts a received price list by merge result
func (m *Metrics) RecordPriceList(merged bool) {
	if m == nil {
		return
	}
	result := "duplicate"
	if merged {
		result = "merged"
	}
	m.PriceLists.WithLabelValues(result).Inc()
}

// IncMaterialsCompleted counts a material reaching full coverage
func (m *Metrics) IncMaterialsCompleted() {
	if m == nil {
		return
	}
	m.MaterialsCompleted.Inc()
}

// CoverageWaitStarted marks a worker blocked on coverage; the returned func
// records the wait duration and unmarks it
func (m *Metrics) CoverageWaitStarted() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	m.CoverageWaits.Inc()
	return func() {
		m.CoverageWaits.Dec()
		m.CoverageWaitTime.Observe(time.Since(start).Seconds())
	}
}

// IncCoverageStalls counts a coverage wait that passed the stall threshold
func (m *Metrics) IncCoverageStalls() {
	if m == nil {
		return
	}
	m.CoverageStalls.Inc()
}

// RecordSolve records a solver call
func (m *Metrics) RecordSolve(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SolveDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
