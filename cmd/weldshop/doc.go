// Package main is the entry point of the weldshop simulator.
//
// weldshop loads one or more scenario files, builds reference suppliers and
// customers for each, and runs them through the workshop pipeline: orders
// are queued, every supplier is asked for prices, workers wait for complete
// coverage, solve the cutting plan and deliver.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Run every scenario under ./scenarios
//	weldshop run --scenario 'scenarios/**/*.yaml' --workers 8
//
//	# Keep the stats server up after the runs, until interrupted
//	weldshop run --scenario demo.toml --metrics --hold
//
//	# Check scenario files and print the normalized result
//	weldshop validate --scenario demo.yaml --print json
//
// Signals:
//   - SIGINT, SIGTERM: stop the stats server; running scenarios drain first
package main
