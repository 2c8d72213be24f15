/*
Package server exposes the workshop over HTTP for operators.

Routes:

	GET /health   liveness and pipeline state
	GET /stats    workshop.Stats as JSON
	GET /metrics  Prometheus exposition

Requests pass through recovery, tracing, metrics, CORS and a global rate
limit. Run blocks until its context is cancelled and then shuts the listener
down gracefully.
*/
package server
