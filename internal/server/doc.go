// Package server wires the opened-files service together.
//
// This package orchestrates all components:
//   - Settings store, snapshot codec and registry
//   - Vault index and watcher (optional, VAULT_ROOT)
//   - HTTP routing with Gin, WebSocket host bridge, Prometheus endpoint
//   - Middleware stack (recovery, metrics, CORS, rate limiting)
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Open settings and index the vault
//  4. Setup HTTP routes and middleware
//  5. Serve HTTP and watch the vault
//  6. Graceful shutdown when the context ends
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal("server failed", zap.Error(err))
//	}
package server
