package simulation

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
	"github.com/GriffinCanCode/weldshop/internal/domain/workshop"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/logging"
)

// Supplier quotes plates from a fixed catalog
type Supplier struct {
	name    string
	catalog map[pricing.MaterialID][]pricing.Plate
	delay   time.Duration
	logger  *logging.Logger

	mu   sync.RWMutex
	sink workshop.PriceSink // Protected by mu

	inflight sync.WaitGroup
	requests atomic.Uint64
}

// NewSupplier creates a supplier quoting from catalog
func NewSupplier(name string, catalog map[pricing.MaterialID][]pricing.Plate) *Supplier {
	if catalog == nil {
		catalog = make(map[pricing.MaterialID][]pricing.Plate)
	}
	return &Supplier{
		name:    name,
		catalog: catalog,
		logger:  logging.NewNop(),
	}
}

// WithDelay makes every answer wait d before it is sent
func (s *Supplier) WithDelay(d time.Duration) *Supplier {
	s.delay = d
	return s
}

// WithLogger sets the logger
func (s *Supplier) WithLogger(logger *logging.Logger) *Supplier {
	s.logger = logger.Named("supplier").With(zap.String("supplier", s.name))
	return s
}

// Bind sets where answers are delivered
func (s *Supplier) Bind(sink workshop.PriceSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// Name returns the supplier's name
func (s *Supplier) Name() string {
	return s.name
}

// Requests returns how many price lists were requested so far
func (s *Supplier) Requests() uint64 {
	return s.requests.Load()
}

// SendPriceList schedules an answer for material and returns immediately
func (s *Supplier) SendPriceList(material pricing.MaterialID) {
	s.requests.Add(1)

	s.mu.RLock()
	sink := s.sink
	s.mu.RUnlock()
	if sink == nil {
		s.logger.Warn("price list requested before bind", zap.Uint32("material", uint32(material)))
		return
	}

	list := s.quote(material)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
		if err := sink.ReceivePriceList(s, list); err != nil {
			s.logger.Error("price list rejected",
				zap.Uint32("material", uint32(material)),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every scheduled answer has been delivered
func (s *Supplier) Wait() {
	s.inflight.Wait()
}

func (s *Supplier) quote(material pricing.MaterialID) pricing.PriceList {
	plates := s.catalog[material]
	list := pricing.PriceList{Material: material, Plates: make([]pricing.Plate, len(plates))}
	copy(list.Plates, plates)
	return list
}
