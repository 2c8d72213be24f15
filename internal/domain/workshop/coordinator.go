package workshop

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/weldshop/internal/domain/order"
	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/weldshop/internal/shared/id"
	"github.com/GriffinCanCode/weldshop/internal/shared/queue"
)

type lifecycle int

const (
	stateIdle lifecycle = iota
	stateRunning
	stateDraining // Stop called, queued orders still in flight
	stateStopped
)

// pending is a queued order together with the customer that placed it
type pending struct {
	customer Customer
	order    *order.Order
	enqueued time.Time
}

// Coordinator connects customers, suppliers and the solver.
//
// Suppliers and customers are registered before Start. Start launches one
// intake goroutine per customer and a fixed pool of workers sharing a queue
// whose capacity equals the pool size. Stop drains the pipeline.
type Coordinator struct {
	solver       Solver
	logger       *logging.Logger
	metrics      *monitoring.Metrics
	tracer       *tracing.Tracer
	breaker      *resilience.Breaker
	stallWarning time.Duration
	onFailure    func(*Failure)

	book    *pricing.Book
	latency *monitoring.Latency

	// coverMu guards nothing but the wait itself: waiters check the book and
	// sleep under it, and ReceivePriceList takes it only to broadcast, after
	// the book's own lock has been released.
	coverMu sync.Mutex
	covered *sync.Cond

	mu          sync.RWMutex
	state       lifecycle                 // Protected by mu
	suppliers   []Supplier                // Fixed after Start
	supplierIDs map[Supplier]id.SupplierID // Fixed after Start
	customers   []Customer                // Fixed after Start
	workers     int
	queue       *queue.Bounded[pending]
	intake      *errgroup.Group
	pool        *errgroup.Group

	failMu   sync.Mutex
	failures error                      // Protected by failMu
	faulty   map[id.SupplierID]struct{} // Protected by failMu

	received      atomic.Uint64
	delivered     atomic.Uint64
	failed        atomic.Uint64
	priceRequests atomic.Uint64
	priceLists    atomic.Uint64
	duplicates    atomic.Uint64
}

// NewCoordinator creates a coordinator that prices orders with solver
func NewCoordinator(solver Solver, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Coordinator{
		solver:      solver,
		logger:      logger.Named("workshop"),
		book:        pricing.NewBook(),
		latency:     monitoring.NewLatency(monitoring.DefaultLatencyWindow),
		supplierIDs: make(map[Supplier]id.SupplierID),
		faulty:      make(map[id.SupplierID]struct{}),
	}
	c.covered = sync.NewCond(&c.coverMu)
	return c
}

// WithMetrics adds metrics tracking to the coordinator
func (c *Coordinator) WithMetrics(metrics *monitoring.Metrics) *Coordinator {
	c.metrics = metrics
	return c
}

// WithTracer records one span per processed order
func (c *Coordinator) WithTracer(tracer *tracing.Tracer) *Coordinator {
	c.tracer = tracer
	return c
}

// WithBreaker routes every solver call through breaker
func (c *Coordinator) WithBreaker(breaker *resilience.Breaker) *Coordinator {
	c.breaker = breaker
	return c
}

// WithStallWarning logs a warning when a worker waits longer than d for
// price coverage. Zero disables the warning.
func (c *Coordinator) WithStallWarning(d time.Duration) *Coordinator {
	c.stallWarning = d
	return c
}

// WithFailureHandler registers fn to be called for every failed order.
// fn runs on the worker or intake goroutine and must not block for long.
func (c *Coordinator) WithFailureHandler(fn func(*Failure)) *Coordinator {
	c.onFailure = fn
	return c
}

// RegisterSupplier adds a supplier and returns the ID its contributions are
// recorded under
func (c *Coordinator) RegisterSupplier(s Supplier) (id.SupplierID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateIdle {
		return "", ErrAlreadyStarted
	}
	if _, exists := c.supplierIDs[s]; exists {
		return "", ErrDuplicateSupplier
	}

	supplierID := id.NewSupplierID()
	c.suppliers = append(c.suppliers, s)
	c.supplierIDs[s] = supplierID

	c.logger.Debug("supplier registered", zap.String("supplier_id", supplierID.String()))
	return supplierID, nil
}

// RegisterCustomer adds a customer whose demand is read once the
// coordinator starts
func (c *Coordinator) RegisterCustomer(cu Customer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateIdle {
		return ErrAlreadyStarted
	}
	c.customers = append(c.customers, cu)
	return nil
}

// Start launches the intake loops and a pool of workers
func (c *Coordinator) Start(workers int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateIdle {
		return ErrAlreadyStarted
	}
	if workers < 1 {
		return fmt.Errorf("start with %d workers: %w", workers, ErrInvalidWorkerCount)
	}
	if len(c.suppliers) == 0 {
		return ErrNoSuppliers
	}

	c.state = stateRunning
	c.workers = workers
	c.queue = queue.New[pending](workers)
	c.intake = &errgroup.Group{}
	c.pool = &errgroup.Group{}

	for _, cu := range c.customers {
		c.intake.Go(func() error {
			return c.runIntake(cu)
		})
	}
	for w := 0; w < workers; w++ {
		c.pool.Go(func() error {
			c.runWorker(w)
			return nil
		})
	}

	c.logger.Info("workshop started",
		zap.Int("workers", workers),
		zap.Int("suppliers", len(c.suppliers)),
		zap.Int("customers", len(c.customers)),
	)
	return nil
}

// Stop waits until every customer is out of demand and every queued order
// has been processed. It returns the failures observed during the run.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	switch c.state {
	case stateIdle:
		c.mu.Unlock()
		return ErrNotStarted
	case stateDraining, stateStopped:
		c.mu.Unlock()
		return ErrAlreadyStopped
	}
	c.state = stateDraining
	c.mu.Unlock()

	c.logger.Info("workshop stopping, draining orders")

	intakeErr := c.intake.Wait()
	c.queue.Close()
	poolErr := c.pool.Wait()

	c.mu.Lock()
	c.state = stateStopped
	c.mu.Unlock()

	c.failMu.Lock()
	failures := c.failures
	c.failMu.Unlock()

	c.logger.Info("workshop stopped",
		zap.Uint64("received", c.received.Load()),
		zap.Uint64("delivered", c.delivered.Load()),
		zap.Uint64("failed", c.failed.Load()),
	)
	return multierr.Combine(intakeErr, poolErr, failures)
}

// ReceivePriceList merges a supplier's answer into the book and wakes every
// worker waiting for coverage
func (c *Coordinator) ReceivePriceList(s Supplier, list pricing.PriceList) error {
	c.mu.RLock()
	supplierID, ok := c.supplierIDs[s]
	total := len(c.suppliers)
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("price list for material %d: %w", list.Material, ErrUnknownSupplier)
	}

	merged, contributors := c.book.MergeCount(list, supplierID)

	c.priceLists.Add(1)
	c.metrics.RecordPriceList(merged)
	if !merged {
		c.duplicates.Add(1)
		c.logger.Debug("duplicate price list ignored",
			zap.String("supplier_id", supplierID.String()),
			zap.Uint32("material", uint32(list.Material)),
		)
		return nil
	}
	if contributors == total {
		c.metrics.IncMaterialsCompleted()
		c.logger.Debug("material fully quoted", zap.Uint32("material", uint32(list.Material)))
	}

	c.coverMu.Lock()
	c.covered.Broadcast()
	c.coverMu.Unlock()
	return nil
}

// Book returns the shared price book
func (c *Coordinator) Book() *pricing.Book {
	return c.book
}

func (c *Coordinator) runIntake(cu Customer) error {
	for {
		var o *order.Order
		err := protect(func() error {
			o = cu.WaitForDemand()
			return nil
		})
		if err != nil {
			c.fail(&Failure{Stage: StageIntake, Err: err})
			return nil
		}
		if o == nil {
			return nil
		}

		o.EnsureID()
		if err := c.queue.Push(pending{customer: cu, order: o, enqueued: time.Now()}); err != nil {
			return fmt.Errorf("enqueue order %s: %w", o.ID, err)
		}
		c.received.Add(1)
		c.metrics.IncOrdersReceived()
		c.metrics.SetQueueDepth(c.queue.Len())
	}
}

func (c *Coordinator) runWorker(worker int) {
	logger := c.logger.With(zap.Int("worker", worker))
	logger.Debug("worker started")

	for {
		p, ok := c.queue.Pop()
		if !ok {
			logger.Debug("worker finished")
			return
		}
		c.metrics.SetQueueDepth(c.queue.Len())
		c.process(logger, p)
	}
}

func (c *Coordinator) process(logger *logging.Logger, p pending) {
	idle := c.metrics.WorkerBusy()
	defer idle()

	o := p.order
	logger = logger.With(
		zap.String("order_id", o.ID.String()),
		zap.Uint32("material", uint32(o.Material)),
	)

	var span *tracing.Span
	if c.tracer != nil {
		span, _ = c.tracer.StartSpan(context.Background(), "order.process")
		span.SetTag("order_id", o.ID.String())
		span.SetTag("material", strconv.FormatUint(uint64(o.Material), 10))
		span.SetTag("items", strconv.Itoa(len(o.Items)))
	}

	stage, err := c.fulfil(logger, p)

	if span != nil {
		span.SetTag("queued", time.Since(p.enqueued).String())
		if err != nil {
			span.SetTag("stage", string(stage))
			span.SetError(err)
		}
		span.Finish()
		c.tracer.Submit(span)
	}

	if err != nil {
		c.fail(&Failure{OrderID: o.ID, Material: o.Material, Stage: stage, Err: err})
		return
	}
	c.delivered.Add(1)
	c.metrics.IncOrdersDelivered()
	logger.Debug("order delivered", zap.Float64("total", o.Total()))
}

// fulfil takes one order through coverage, solving and delivery
func (c *Coordinator) fulfil(logger *logging.Logger, p pending) (Stage, error) {
	o := p.order

	if err := c.ensureCoverage(o.Material); err != nil {
		return StageBroadcast, err
	}
	c.awaitCoverage(logger, o.Material)

	if err := c.solve(o, c.book.Get(o.Material)); err != nil {
		return StageSolve, err
	}

	if err := protect(func() error {
		p.customer.Completed(o)
		return nil
	}); err != nil {
		return StageDeliver, err
	}
	return "", nil
}

// ensureCoverage asks every supplier for a price list unless the material is
// already complete
func (c *Coordinator) ensureCoverage(material pricing.MaterialID) error {
	if c.book.IsComplete(material, len(c.suppliers)) {
		return nil
	}

	var errs error
	for _, s := range c.suppliers {
		err := protect(func() error {
			s.SendPriceList(material)
			return nil
		})
		if err != nil {
			supplierID := c.supplierIDs[s]
			c.markFaulty(supplierID, material, err)
			errs = multierr.Append(errs, fmt.Errorf("supplier %s: %w", supplierID, err))
		}
	}

	c.priceRequests.Add(uint64(len(c.suppliers)))
	c.metrics.RecordBroadcast(uint32(material), len(c.suppliers))
	return errs
}

// awaitCoverage blocks until every supplier has contributed for material.
// The wait is never cancelled; a stall timer only reports it.
func (c *Coordinator) awaitCoverage(logger *logging.Logger, material pricing.MaterialID) {
	total := len(c.suppliers)
	if c.book.IsComplete(material, total) {
		return
	}

	done := c.metrics.CoverageWaitStarted()
	defer done()

	if c.stallWarning > 0 {
		start := time.Now()
		stall := time.AfterFunc(c.stallWarning, func() {
			c.metrics.IncCoverageStalls()
			logger.Warn("still waiting for price coverage",
				zap.Duration("waited", time.Since(start)),
				zap.Int("suppliers", total),
			)
		})
		defer stall.Stop()
	}

	c.coverMu.Lock()
	for !c.book.IsComplete(material, total) {
		c.covered.Wait()
	}
	c.coverMu.Unlock()
}

func (c *Coordinator) solve(o *order.Order, prices pricing.PriceList) error {
	timer := monitoring.NewTimer(c.metrics)

	err := protect(func() error {
		if c.breaker == nil {
			return c.solver.Solve(o.Items, prices)
		}
		return c.breaker.Execute(func() error {
			return c.solver.Solve(o.Items, prices)
		})
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	c.latency.Observe(timer.Stop(status))
	return err
}

// markFaulty logs the first failed price request of each supplier. Later
// failures still fail their orders but are not reported again here.
func (c *Coordinator) markFaulty(supplierID id.SupplierID, material pricing.MaterialID, err error) {
	c.failMu.Lock()
	_, seen := c.faulty[supplierID]
	if !seen {
		c.faulty[supplierID] = struct{}{}
	}
	c.failMu.Unlock()

	if seen {
		return
	}
	c.logger.Error("supplier failed price request",
		zap.String("supplier_id", supplierID.String()),
		zap.Uint32("material", uint32(material)),
		zap.Error(err),
	)
}

func (c *Coordinator) fail(f *Failure) {
	c.failed.Add(1)
	c.metrics.IncOrdersFailed(string(f.Stage))

	c.logger.Error("order failed",
		zap.String("order_id", f.OrderID.String()),
		zap.Uint32("material", uint32(f.Material)),
		zap.String("stage", string(f.Stage)),
		zap.Error(f.Err),
	)

	c.failMu.Lock()
	c.failures = multierr.Append(c.failures, f)
	c.failMu.Unlock()

	if c.onFailure != nil {
		c.onFailure(f)
	}
}
