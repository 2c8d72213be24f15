package workshop

import (
	"sort"

	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/monitoring"
)

// Stats is a point-in-time view of the pipeline
type Stats struct {
	State     string `json:"state"`
	Workers   int    `json:"workers"`
	Suppliers int    `json:"suppliers"`
	Customers int    `json:"customers"`

	OrdersReceived  uint64 `json:"orders_received"`
	OrdersDelivered uint64 `json:"orders_delivered"`
	OrdersFailed    uint64 `json:"orders_failed"`

	PriceRequests       uint64   `json:"price_requests"`
	PriceLists          uint64   `json:"price_lists"`
	DuplicatePriceLists uint64   `json:"duplicate_price_lists"`
	FaultySuppliers     []string `json:"faulty_suppliers,omitempty"`

	QueueDepth    int `json:"queue_depth"`
	QueueCapacity int `json:"queue_capacity"`

	Book         pricing.BookStats         `json:"book"`
	SolveLatency monitoring.LatencySummary `json:"solve_latency"`
}

func (s lifecycle) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRunning:
		return "running"
	case stateDraining:
		return "draining"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats returns current counters; safe to call at any time
func (c *Coordinator) Stats() Stats {
	c.mu.RLock()
	stats := Stats{
		State:     c.state.String(),
		Workers:   c.workers,
		Suppliers: len(c.suppliers),
		Customers: len(c.customers),
	}
	q := c.queue
	c.mu.RUnlock()

	if q != nil {
		stats.QueueDepth = q.Len()
		stats.QueueCapacity = q.Cap()
	}

	stats.OrdersReceived = c.received.Load()
	stats.OrdersDelivered = c.delivered.Load()
	stats.OrdersFailed = c.failed.Load()
	stats.PriceRequests = c.priceRequests.Load()
	stats.PriceLists = c.priceLists.Load()
	stats.DuplicatePriceLists = c.duplicates.Load()
	stats.FaultySuppliers = c.faultySuppliers()
	stats.Book = c.book.Stats()
	stats.SolveLatency = c.latency.Summary()
	return stats
}

func (c *Coordinator) faultySuppliers() []string {
	c.failMu.Lock()
	defer c.failMu.Unlock()

	if len(c.faulty) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.faulty))
	for supplierID := range c.faulty {
		out = append(out, supplierID.String())
	}
	sort.Strings(out)
	return out
}
