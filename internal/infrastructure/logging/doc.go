// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output, debug level
//
// Components receive the embedded *zap.Logger and name themselves with
// Named, so every line carries its origin ("registry", "bridge", "vault").
// The level can be changed at runtime with SetLevel.
//
// Example Usage:
//
//	logger, err := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	manager := registry.NewManager(nil, codec, logger.Logger)
//	logger.Info("Server starting", zap.String("port", "8000"))
package logging
