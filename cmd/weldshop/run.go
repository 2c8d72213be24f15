package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/weldshop/internal/domain/workshop"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/config"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/server"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/weldshop/internal/scenario"
	"github.com/GriffinCanCode/weldshop/internal/solver"
)

type runOptions struct {
	pattern string
	workers int // Zero defers to the scenario, then to config
	hold    bool
	addr    string // Overrides the metrics host and port
	cfg     config.Config

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	logger     *logging.Logger
}

func runOptionsFrom(ctx *cli.Context) (runOptions, error) {
	cfg, err := config.Load()
	if err != nil {
		return runOptions{}, fmt.Errorf("load config: %w", err)
	}

	if ctx.IsSet("workers") {
		if ctx.Int("workers") < 1 {
			return runOptions{}, errors.New("invalid workers: must be at least 1")
		}
		cfg.Workshop.Workers = ctx.Int("workers")
	}
	if ctx.Bool("dev") {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if ctx.Bool("metrics") {
		cfg.Metrics.Enabled = true
	}

	opts := runOptions{
		pattern:    ctx.String("scenario"),
		hold:       ctx.Bool("hold"),
		cfg:        *cfg,
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
	if ctx.IsSet("workers") {
		opts.workers = cfg.Workshop.Workers
	}
	if addr := ctx.String("addr"); addr != "" {
		opts.cfg.Metrics.Enabled = true
		opts.addr = addr
	}
	return opts, nil
}

// liveStats serves the stats of whichever coordinator is running
type liveStats struct {
	current atomic.Pointer[workshop.Coordinator]
}

func (l *liveStats) Stats() workshop.Stats {
	if c := l.current.Load(); c != nil {
		return c.Stats()
	}
	return workshop.Stats{State: "idle"}
}

// report summarises one scenario run
type report struct {
	Scenario  string
	Orders    int
	Delivered int
	Failed    uint64
	Elapsed   time.Duration
	Stats     workshop.Stats
}

func run(parent context.Context, opts runOptions) error {
	logger := opts.logger
	if logger == nil {
		var err error
		logger, err = newLogger(opts.cfg.Logging)
		if err != nil {
			return err
		}
		defer logger.Close()
	}

	scenarios, err := scenario.LoadGlob(opts.pattern)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics(opts.registerer)
	tracer := tracing.New("weldshop", logger.Logger)
	defer tracer.Close()

	live := &liveStats{}
	serverDone := make(chan error, 1)
	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	if opts.cfg.Metrics.Enabled {
		addr := opts.addr
		if addr == "" {
			addr = opts.cfg.Metrics.Addr()
		}
		srvOpts := server.DefaultOptions(addr)
		srvOpts.Development = opts.cfg.Logging.Development
		srv := server.New(srvOpts, live, metrics, opts.gatherer, tracer, logger)
		go func() { serverDone <- srv.Run(serverCtx) }()
	} else {
		serverDone <- nil
	}

	var errs error
	for _, s := range scenarios {
		if ctx.Err() != nil {
			logger.Warn("interrupted, skipping remaining scenarios")
			break
		}
		r, err := runScenario(s, opts, metrics, tracer, live, logger)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("scenario %s: %w", s.Name, err))
		}
		logger.Info("scenario finished",
			zap.String("scenario", r.Scenario),
			zap.Int("orders", r.Orders),
			zap.Int("delivered", r.Delivered),
			zap.Uint64("failed", r.Failed),
			zap.Uint64("price_requests", r.Stats.PriceRequests),
			zap.Float64("solve_p95_seconds", r.Stats.SolveLatency.P95),
			zap.Duration("elapsed", r.Elapsed),
		)
	}

	if opts.hold && opts.cfg.Metrics.Enabled {
		logger.Info("runs complete, holding stats server until interrupted")
		<-ctx.Done()
	}
	stopServer()
	return multierr.Append(errs, <-serverDone)
}

func runScenario(s *scenario.Scenario, opts runOptions, metrics *monitoring.Metrics, tracer *tracing.Tracer, live *liveStats, logger *logging.Logger) (report, error) {
	cfg := opts.cfg
	logger = logger.With(zap.String("scenario", s.Name))

	workers := cfg.Workshop.Workers
	if s.Workers > 0 {
		workers = s.Workers
	}
	if opts.workers > 0 {
		workers = opts.workers
	}
	stall := cfg.Workshop.StallWarning
	if s.StallWarning > 0 {
		stall = s.StallWarning.Std()
	}

	breaker := newSolverBreaker(cfg.Workshop, logger)

	coordinator := workshop.NewCoordinator(solver.Cheapest{}, logger).
		WithMetrics(metrics).
		WithTracer(tracer).
		WithBreaker(breaker).
		WithStallWarning(stall)

	participants, err := scenario.Build(s, coordinator, scenario.Defaults{
		SupplierDelay: scenario.Duration(cfg.Simulation.SupplierDelay),
		DemandRPS:     cfg.Simulation.DemandRPS,
		DemandBurst:   cfg.Simulation.DemandBurst,
	}, logger)
	if err != nil {
		return report{Scenario: s.Name}, err
	}

	start := time.Now()
	if err := coordinator.Start(workers); err != nil {
		return report{Scenario: s.Name}, err
	}
	live.current.Store(coordinator)

	runErr := coordinator.Stop()
	participants.Wait()

	stats := coordinator.Stats()
	return report{
		Scenario:  s.Name,
		Orders:    s.TotalOrders(),
		Delivered: participants.Delivered(),
		Failed:    stats.OrdersFailed,
		Elapsed:   time.Since(start),
		Stats:     stats,
	}, runErr
}

// newSolverBreaker trips on solver faults only. Orders the solver rejects
// as unpriceable fail on their own without opening the breaker.
func newSolverBreaker(cfg config.WorkshopConfig, logger *logging.Logger) *resilience.Breaker {
	return resilience.New("solver", resilience.Settings{
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: resilience.ConsecutiveFailures(cfg.BreakerFailures),
		IsSuccessful: func(err error) bool {
			return err == nil || solver.IsInputError(err)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	logger, err := logging.New(logging.ConfigFor(cfg.Level, cfg.Development))
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

func validate(w io.Writer, pattern, format string) error {
	scenarios, err := scenario.LoadGlob(pattern)
	if err != nil {
		return err
	}

	for _, s := range scenarios {
		if format == "" {
			fmt.Fprintf(w, "%s: ok (%s, %d suppliers, %d customers, %d orders)\n",
				s.Source, s.Name, len(s.Suppliers), len(s.Customers), s.TotalOrders())
			continue
		}

		data, err := scenario.Marshal(s, scenario.Format(format))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "# %s\n%s\n", s.Source, data)
	}
	return nil
}
