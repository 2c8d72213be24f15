package workshop

import (
	"github.com/GriffinCanCode/weldshop/internal/domain/order"
	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
)

// Supplier quotes plates for a material on request. The answer is delivered
// later, possibly from another goroutine, through a PriceSink.
//
// Implementations must be comparable (pointer types) so the coordinator can
// recognise them when they answer.
type Supplier interface {
	SendPriceList(material pricing.MaterialID)
}

// Customer produces demand and receives finished orders.
//
// WaitForDemand blocks until the next order is available and returns nil
// once the customer has no more demand. Completed receives each delivered
// order with item costs filled in.
type Customer interface {
	WaitForDemand() *order.Order
	Completed(o *order.Order)
}

// Solver prices the items of one order against a merged price list,
// writing each item's Cost.
type Solver interface {
	Solve(items []order.Item, prices pricing.PriceList) error
}

// SolverFunc adapts an ordinary function to Solver
type SolverFunc func(items []order.Item, prices pricing.PriceList) error

// Solve calls f(items, prices)
func (f SolverFunc) Solve(items []order.Item, prices pricing.PriceList) error {
	return f(items, prices)
}

// PriceSink accepts supplier answers
type PriceSink interface {
	ReceivePriceList(s Supplier, list pricing.PriceList) error
}

var _ PriceSink = (*Coordinator)(nil)
