// Package metrics provides the engine's request counters and rolling
// latency averages, with an optional Prometheus export side.
package metrics
