package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/config"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/logging"
	"github.com/GriffinCanCode/openedfiles/internal/server"
)

func main() {
	// Flags override the environment
	port := flag.String("port", "", "Server port (overrides PORT)")
	vaultRoot := flag.String("vault", "", "Vault root directory (overrides VAULT_ROOT)")
	flag.Parse()

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *vaultRoot != "" {
		cfg.Vault.Root = *vaultRoot
	}

	logger, err := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		logger = logging.NewDefault()
		logger.Warn("Invalid log level, using default", zap.Error(err))
	}
	if cfgErr != nil {
		logger.Warn("Failed to load configuration, using defaults", zap.Error(cfgErr))
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	if err := srv.Close(); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if runErr != nil {
		logger.Fatal("Server error", zap.Error(runErr))
	}
}
