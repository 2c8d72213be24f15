package workshop

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/weldshop/internal/domain/order"
	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
)

// fakeSupplier answers every request from its catalog on a new goroutine.
// Unknown materials are answered with an empty list.
type fakeSupplier struct {
	sink    PriceSink
	catalog map[pricing.MaterialID][]pricing.Plate
	inline  bool // Answer on the caller's goroutine
	delay   time.Duration

	requests atomic.Int32
	wg       sync.WaitGroup
}

func newFakeSupplier(catalog map[pricing.MaterialID][]pricing.Plate) *fakeSupplier {
	return &fakeSupplier{catalog: catalog}
}

func (s *fakeSupplier) SendPriceList(material pricing.MaterialID) {
	s.requests.Add(1)
	list := pricing.PriceList{Material: material, Plates: s.catalog[material]}
	if s.inline {
		_ = s.sink.ReceivePriceList(s, list)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		time.Sleep(s.delay)
		_ = s.sink.ReceivePriceList(s, list)
	}()
}

// silentSupplier records requests and never answers on its own
type silentSupplier struct {
	mu        sync.Mutex
	materials map[pricing.MaterialID]int
}

func newSilentSupplier() *silentSupplier {
	return &silentSupplier{materials: make(map[pricing.MaterialID]int)}
}

func (s *silentSupplier) SendPriceList(material pricing.MaterialID) {
	s.mu.Lock()
	s.materials[material]++
	s.mu.Unlock()
}

func (s *silentSupplier) requested(material pricing.MaterialID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materials[material] > 0
}

type panickingSupplier struct{}

func (panickingSupplier) SendPriceList(pricing.MaterialID) { panic("catalog offline") }

// scriptCustomer hands out a fixed list of orders and records deliveries
type scriptCustomer struct {
	mu        sync.Mutex
	orders    []*order.Order
	completed []*order.Order
	onDeliver func(*order.Order)
}

func newScriptCustomer(orders ...*order.Order) *scriptCustomer {
	return &scriptCustomer{orders: orders}
}

func (c *scriptCustomer) WaitForDemand() *order.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.orders) == 0 {
		return nil
	}
	o := c.orders[0]
	c.orders = c.orders[1:]
	return o
}

func (c *scriptCustomer) Completed(o *order.Order) {
	if c.onDeliver != nil {
		c.onDeliver(o)
	}
	c.mu.Lock()
	c.completed = append(c.completed, o)
	c.mu.Unlock()
}

func (c *scriptCustomer) delivered() []*order.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*order.Order, len(c.completed))
	copy(out, c.completed)
	return out
}

type panickingCustomer struct{}

func (panickingCustomer) WaitForDemand() *order.Order { panic("demand feed broken") }
func (panickingCustomer) Completed(*order.Order)      {}

// mockSolver is a testify mock of Solver
type mockSolver struct {
	mock.Mock
}

func (m *mockSolver) Solve(items []order.Item, prices pricing.PriceList) error {
	args := m.Called(items, prices)
	return args.Error(0)
}

// unitSolver prices every item at 1
var unitSolver = SolverFunc(func(items []order.Item, _ pricing.PriceList) error {
	for i := range items {
		items[i].Cost = 1
	}
	return nil
})

func ordersFor(material pricing.MaterialID, n int) []*order.Order {
	orders := make([]*order.Order, n)
	for i := range orders {
		orders[i] = order.New(material, order.Item{W: 2, H: 2, WeldingStrength: 1})
	}
	return orders
}

func stopWithin(t *testing.T, c *Coordinator, timeout time.Duration) error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- c.Stop() }()
	select {
	case err := <-errc:
		return err
	case <-time.After(timeout):
		t.Fatal("Stop did not return")
		return nil
	}
}
