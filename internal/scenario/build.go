package scenario

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/weldshop/internal/domain/workshop"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/weldshop/internal/simulation"
)

// Defaults fill in values a scenario leaves unset
type Defaults struct {
	SupplierDelay Duration
	DemandRPS     float64
	DemandBurst   int
}

// Participants are the simulation actors created for a scenario
type Participants struct {
	Suppliers []*simulation.Supplier
	Customers []*simulation.Customer
}

// Wait blocks until every supplier answer has been delivered
func (p *Participants) Wait() {
	for _, s := range p.Suppliers {
		s.Wait()
	}
}

// Delivered returns the number of orders handed back to customers
func (p *Participants) Delivered() int {
	var n int
	for _, c := range p.Customers {
		n += len(c.Results())
	}
	return n
}

// Build creates the scenario's suppliers and customers and registers them
// with coordinator. It must be called before coordinator.Start.
func Build(s *Scenario, coordinator *workshop.Coordinator, defaults Defaults, logger *logging.Logger) (*Participants, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Participants{}

	for _, spec := range s.Suppliers {
		delay := spec.Delay
		if delay == 0 {
			delay = defaults.SupplierDelay
		}
		sup := simulation.NewSupplier(spec.Name, spec.CatalogMap()).
			WithDelay(delay.Std()).
			WithLogger(logger)

		supplierID, err := coordinator.RegisterSupplier(sup)
		if err != nil {
			return nil, fmt.Errorf("register supplier %s: %w", spec.Name, err)
		}
		sup.Bind(coordinator)
		p.Suppliers = append(p.Suppliers, sup)

		logger.Debug("scenario supplier ready",
			zap.String("supplier", spec.Name),
			zap.String("supplier_id", supplierID.String()),
			zap.Int("materials", len(spec.Catalog)),
		)
	}

	for _, spec := range s.Customers {
		rps, burst := spec.Rate, spec.Burst
		if rps == 0 {
			rps = defaults.DemandRPS
		}
		if burst == 0 {
			burst = defaults.DemandBurst
		}
		cust := simulation.NewCustomer(spec.Name, spec.Script()).
			WithRate(rps, burst).
			WithLogger(logger)

		if err := coordinator.RegisterCustomer(cust); err != nil {
			return nil, fmt.Errorf("register customer %s: %w", spec.Name, err)
		}
		p.Customers = append(p.Customers, cust)
	}

	return p, nil
}
