package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/weldshop/internal/domain/workshop"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/weldshop/internal/infrastructure/tracing"
)

const shutdownTimeout = 5 * time.Second

// StatsSource reports the current state of the pipeline
type StatsSource interface {
	Stats() workshop.Stats
}

// Options configures the stats server
type Options struct {
	Addr        string
	Development bool
	RateLimit   RateLimitConfig
	CORS        CORSConfig
}

// DefaultOptions returns options for a local stats server
func DefaultOptions(addr string) Options {
	return Options{
		Addr:      addr,
		RateLimit: DefaultRateLimitConfig(),
		CORS:      DefaultCORSConfig(),
	}
}

// Server exposes health, Prometheus metrics and pipeline stats over HTTP
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *logging.Logger
}

// New creates a stats server. metrics, gatherer and tracer may be nil.
func New(opts Options, source StatsSource, metrics *monitoring.Metrics, gatherer prometheus.Gatherer, tracer *tracing.Tracer, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	if !opts.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	if tracer != nil {
		router.Use(tracing.HTTPMiddleware(tracer))
	}
	router.Use(monitoring.Middleware(metrics))
	router.Use(CORS(opts.CORS))
	if opts.RateLimit.RequestsPerSecond > 0 {
		router.Use(RateLimit(opts.RateLimit))
	}

	h := &handlers{source: source, started: time.Now()}
	router.GET("/health", h.health)
	router.GET("/stats", h.stats)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.Named("server"),
	}
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting stats server", zap.String("addr", s.http.Addr))
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("stats server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down stats server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown stats server: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("stats server: %w", err)
	}
	return nil
}

type handlers struct {
	source  StatsSource
	started time.Time
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  h.source.Stats().State,
		"uptime": time.Since(h.started).Round(time.Millisecond).String(),
	})
}

func (h *handlers) stats(c *gin.Context) {
	data, err := sonic.Marshal(h.source.Stats())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode stats"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
