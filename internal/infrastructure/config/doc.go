// Package config provides 12-factor configuration management for the workshop.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables.
//
// Configuration Sections:
//   - Workshop: worker pool size, coverage stall warning, solver breaker
//   - Logging: Log level and output format
//   - Metrics: optional /health, /metrics and /stats endpoint
//   - Simulation: reference supplier latency and demand pacing
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	coordinator.Start(cfg.Workshop.Workers)
//
// Environment Variables:
//   - WORKERS, COVERAGE_STALL_WARNING, SOLVER_BREAKER_FAILURES, SOLVER_BREAKER_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
//   - METRICS_ENABLED, METRICS_HOST, METRICS_PORT
//   - SUPPLIER_DELAY, DEMAND_RPS, DEMAND_BURST
package config
