package simulation

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/weldshop/internal/domain/order"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/logging"
)

// Customer replays scripted demand
type Customer struct {
	name    string
	limiter *rate.Limiter // Nil means unpaced
	logger  *logging.Logger

	mu        sync.Mutex
	script    []*order.Order // Protected by mu
	next      int            // Protected by mu
	completed []*order.Order // Protected by mu
	done      chan struct{}
	expected  int
}

// NewCustomer creates a customer that will place orders in sequence.
// Every order is cloned, so the same script may feed several customers.
func NewCustomer(name string, orders []*order.Order) *Customer {
	script := make([]*order.Order, len(orders))
	for i, o := range orders {
		script[i] = o.Clone()
		script[i].ID = ""
	}
	c := &Customer{
		name:     name,
		logger:   logging.NewNop(),
		script:   script,
		expected: len(script),
		done:     make(chan struct{}),
	}
	if c.expected == 0 {
		close(c.done)
	}
	return c
}

// WithRate paces demand to rps orders per second with the given burst.
// A non-positive rps leaves demand unpaced.
func (c *Customer) WithRate(rps float64, burst int) *Customer {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithLogger sets the logger
func (c *Customer) WithLogger(logger *logging.Logger) *Customer {
	c.logger = logger.Named("customer").With(zap.String("customer", c.name))
	return c
}

// Name returns the customer's name
func (c *Customer) Name() string {
	return c.name
}

// WaitForDemand returns the next scripted order, or nil when the script is
// exhausted
func (c *Customer) WaitForDemand() *order.Order {
	c.mu.Lock()
	if c.next >= len(c.script) {
		c.mu.Unlock()
		return nil
	}
	o := c.script[c.next]
	c.script[c.next] = nil
	c.next++
	c.mu.Unlock()

	if c.limiter != nil {
		if err := c.limiter.Wait(context.Background()); err != nil {
			c.logger.Warn("demand pacing failed", zap.Error(err))
		}
	}

	o.EnsureID()
	c.logger.Debug("order placed",
		zap.String("order_id", o.ID.String()),
		zap.Uint32("material", uint32(o.Material)),
	)
	return o
}

// Completed records a delivered order
func (c *Customer) Completed(o *order.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.completed = append(c.completed, o)
	c.logger.Debug("order completed",
		zap.String("order_id", o.ID.String()),
		zap.Float64("total", o.Total()),
	)
	if len(c.completed) == c.expected {
		close(c.done)
	}
}

// Done is closed once every scripted order has been delivered. Failed
// orders are never delivered, so Done stays open if any order failed.
func (c *Customer) Done() <-chan struct{} {
	return c.done
}

// Results returns the delivered orders in delivery order
func (c *Customer) Results() []*order.Order {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*order.Order, len(c.completed))
	copy(out, c.completed)
	return out
}

// Pending returns how many scripted orders have not been placed yet
func (c *Customer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.script) - c.next
}
