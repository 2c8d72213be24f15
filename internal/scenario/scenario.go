// Package scenario loads workshop runs from YAML, TOML or JSON files.
//
// A scenario lists suppliers with their catalogs and customers with the
// orders they will place. Build turns it into simulation participants
// registered with a coordinator.
//
//	name: two-suppliers
//	workers: 4
//	suppliers:
//	  - name: north
//	    delay: 5ms
//	    catalog:
//	      - material: 1
//	        plates: [{w: 2, h: 4, cost: 10}]
//	customers:
//	  - name: acme
//	    rps: 20
//	    repeat: 3
//	    orders:
//	      - material: 1
//	        items: [{w: 2, h: 4, welding_strength: 1.5}]
package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/GriffinCanCode/weldshop/internal/domain/order"
	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported scenario format")
	ErrInvalidScenario   = errors.New("invalid scenario")
)

// Scenario describes one simulated run
type Scenario struct {
	Name         string         `json:"name" yaml:"name" toml:"name"`
	Workers      int            `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty"`
	StallWarning Duration       `json:"stall_warning,omitempty" yaml:"stall_warning,omitempty" toml:"stall_warning,omitempty"`
	Suppliers    []SupplierSpec `json:"suppliers" yaml:"suppliers" toml:"suppliers"`
	Customers    []CustomerSpec `json:"customers" yaml:"customers" toml:"customers"`

	// Source is the file the scenario was loaded from
	Source string `json:"-" yaml:"-" toml:"-"`
}

// SupplierSpec describes a reference supplier
type SupplierSpec struct {
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Delay   Duration `json:"delay,omitempty" yaml:"delay,omitempty" toml:"delay,omitempty"`
	Catalog []Quote  `json:"catalog" yaml:"catalog" toml:"catalog"`
}

// Quote is the catalog entry for one material
type Quote struct {
	Material pricing.MaterialID `json:"material" yaml:"material" toml:"material"`
	Plates   []pricing.Plate    `json:"plates" yaml:"plates" toml:"plates"`
}

// CustomerSpec describes a reference customer
type CustomerSpec struct {
	Name   string         `json:"name" yaml:"name" toml:"name"`
	Rate   float64        `json:"rps,omitempty" yaml:"rps,omitempty" toml:"rps,omitempty"`
	Burst  int            `json:"burst,omitempty" yaml:"burst,omitempty" toml:"burst,omitempty"`
	Repeat int            `json:"repeat,omitempty" yaml:"repeat,omitempty" toml:"repeat,omitempty"`
	Orders []*order.Order `json:"orders" yaml:"orders" toml:"orders"`
}

// CatalogMap returns the supplier's quotes keyed by material
func (s SupplierSpec) CatalogMap() map[pricing.MaterialID][]pricing.Plate {
	catalog := make(map[pricing.MaterialID][]pricing.Plate, len(s.Catalog))
	for _, q := range s.Catalog {
		catalog[q.Material] = append(catalog[q.Material], q.Plates...)
	}
	return catalog
}

// Script expands the customer's orders by Repeat
func (c CustomerSpec) Script() []*order.Order {
	repeat := c.Repeat
	if repeat < 1 {
		repeat = 1
	}
	script := make([]*order.Order, 0, len(c.Orders)*repeat)
	for r := 0; r < repeat; r++ {
		script = append(script, c.Orders...)
	}
	return script
}

// TotalOrders returns how many orders all customers will place
func (s *Scenario) TotalOrders() int {
	var total int
	for _, c := range s.Customers {
		total += len(c.Script())
	}
	return total
}

// Normalize names unnamed participants
func (s *Scenario) Normalize() {
	for i := range s.Suppliers {
		if s.Suppliers[i].Name == "" {
			s.Suppliers[i].Name = "supplier-" + shortUUID()
		}
	}
	for i := range s.Customers {
		if s.Customers[i].Name == "" {
			s.Customers[i].Name = "customer-" + shortUUID()
		}
	}
	if s.Name == "" {
		s.Name = "scenario-" + shortUUID()
	}
}

// Validate reports every problem found, wrapped in ErrInvalidScenario
func (s *Scenario) Validate() error {
	var errs error

	if s.Workers < 0 {
		errs = multierr.Append(errs, fmt.Errorf("workers must not be negative, got %d", s.Workers))
	}
	if len(s.Suppliers) == 0 {
		errs = multierr.Append(errs, errors.New("at least one supplier is required"))
	}
	for i, sup := range s.Suppliers {
		if sup.Delay < 0 {
			errs = multierr.Append(errs, fmt.Errorf("supplier %d (%s): negative delay", i, sup.Name))
		}
		for _, q := range sup.Catalog {
			for _, p := range q.Plates {
				if p.W == 0 || p.H == 0 || p.Cost < 0 {
					errs = multierr.Append(errs, fmt.Errorf("supplier %d (%s): material %d: invalid plate %s", i, sup.Name, q.Material, p))
				}
			}
		}
	}
	for i, cu := range s.Customers {
		if cu.Rate < 0 {
			errs = multierr.Append(errs, fmt.Errorf("customer %d (%s): negative rps", i, cu.Name))
		}
		for j, o := range cu.Orders {
			if o == nil {
				errs = multierr.Append(errs, fmt.Errorf("customer %d (%s): order %d is empty", i, cu.Name, j))
				continue
			}
			for k, it := range o.Items {
				if it.W == 0 || it.H == 0 {
					errs = multierr.Append(errs, fmt.Errorf("customer %d (%s): order %d item %d has zero size", i, cu.Name, j, k))
				}
				if it.WeldingStrength < 0 {
					errs = multierr.Append(errs, fmt.Errorf("customer %d (%s): order %d item %d has negative welding strength", i, cu.Name, j, k))
				}
			}
		}
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, errs)
	}
	return nil
}

func shortUUID() string {
	return uuid.NewString()[:8]
}

// Duration is a time.Duration written as a string such as "250ms"
type Duration time.Duration

// Std returns the standard library duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}
