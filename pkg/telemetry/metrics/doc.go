// Package metrics exposes Prometheus metrics for the gateway: request
// outcomes and latency, token throughput, admission decisions, retries, and
// provider fallbacks.
package metrics
