// Package order defines customer demand flowing through the workshop.
package order

import (
	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
	"github.com/GriffinCanCode/weldshop/internal/shared/id"
)

// Item is one requested piece. Cost is written by the solver.
type Item struct {
	W               uint32  `json:"w" yaml:"w" toml:"w"`
	H               uint32  `json:"h" yaml:"h" toml:"h"`
	WeldingStrength float64 `json:"welding_strength" yaml:"welding_strength" toml:"welding_strength"`
	Cost            float64 `json:"cost" yaml:"cost" toml:"cost"`
}

// Order groups the items a customer needs cut from one material.
//
// An order has a single owner at any time: the customer until it is handed
// to the workshop, then the queue, then one worker, and finally the
// customer's completion callback.
type Order struct {
	ID       id.OrderID         `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Material pricing.MaterialID `json:"material" yaml:"material" toml:"material"`
	Items    []Item             `json:"items" yaml:"items" toml:"items"`
}

// New creates an order with a fresh ID
func New(material pricing.MaterialID, items ...Item) *Order {
	return &Order{
		ID:       id.NewOrderID(),
		Material: material,
		Items:    items,
	}
}

// EnsureID assigns an ID if the order has none
func (o *Order) EnsureID() id.OrderID {
	if o.ID == "" {
		o.ID = id.NewOrderID()
	}
	return o.ID
}

// Total returns the sum of all item costs
func (o *Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Cost
	}
	return total
}

// Clone returns a deep copy, so scripted demand can be replayed
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]Item, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}
