// Package middleware provides the gin middleware of the REST API.
//
//   - CORS: gin-contrib/cors, all origins by default or an explicit list
//   - RateLimit: per-client token buckets (x/time/rate), idle clients expire
//   - GlobalRateLimit: one bucket shared by every client
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.CORSOrigins)))
//	router.Use(middleware.RateLimit(middleware.RateLimitConfig{
//	    RequestsPerSecond: 100,
//	    Burst:             200,
//	    Skip:              middleware.SkipPaths("/stream", "/metrics"),
//	}))
package middleware
