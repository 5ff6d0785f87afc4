/*
Package monitoring provides metrics collection for the opened-files service.

# Overview

This package implements Prometheus-based metrics collection, tracking the
opened-files registry, editor state capture and restore, host events, HTTP
requests and WebSocket traffic.

# Features

- Registry gauges (tracked documents, live surfaces, snapshots, pending handle)
- Capture and restore outcomes
- Eviction and sweep counters
- HTTP request metrics (latency, throughput, size)
- WebSocket connection metrics
- Uptime

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time operations
	timer := monitoring.NewTimer(metrics, "registry", "sweep")
	// ... perform operation ...
	timer.Stop()

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
