/*
Package monitoring provides Prometheus metrics for the workshop pipeline and
its stats server.

# Overview

Metrics cover the life of an order: accepted by an intake loop, queued,
waiting for complete price coverage, solved, and delivered or failed at a
named stage. Supplier traffic is counted as price list requests and merged
or duplicate responses.

Every recording method accepts a nil *Metrics, so the coordinator can run
uninstrumented in tests.

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	timer := monitoring.NewTimer(metrics)
	err := solver.Solve(items, prices)
	timer.Stop("success")

Latency keeps a sliding window of durations and summarises it (mean, p50,
p95, max) for the JSON stats endpoint.
*/
package monitoring
