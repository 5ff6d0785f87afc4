package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/openedfiles/internal/api/middleware"
	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/domain/presenter"
	"github.com/GriffinCanCode/openedfiles/internal/domain/registry"
	"github.com/GriffinCanCode/openedfiles/internal/domain/settings"
	handlers "github.com/GriffinCanCode/openedfiles/internal/http"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/config"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/logging"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/openedfiles/internal/vault"
	"github.com/GriffinCanCode/openedfiles/internal/ws"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router    *gin.Engine
	manager   *registry.Manager
	presenter *presenter.Presenter
	settings  *settings.Store
	index     *vault.Index
	watcher   *vault.Watcher
	logger    *logging.Logger
	config    *config.Config
	metrics   *monitoring.Metrics
	tracer    *tracing.Tracer
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing opened-files service",
		zap.String("port", cfg.Server.Port),
		zap.String("vault", cfg.Vault.Root),
		zap.String("settings", cfg.Settings.Path),
	)

	// Metrics first, everything below reports into them
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)

	store, err := openSettings(cfg.Settings.Path, logger)
	if err != nil {
		return nil, err
	}

	c, err := codec.New(codec.Options{
		CompressThreshold:  cfg.Snapshot.CompressThreshold,
		AllowUnsafeHistory: cfg.Snapshot.AllowUnsafeHistory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot codec: %w", err)
	}

	manager := registry.NewManager(nil, c, logger.Logger).
		WithMetrics(metrics).
		WithLimits(store)

	s := &Server{
		manager:  manager,
		settings: store,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracing.New(logger.Logger),
	}

	var catalog presenter.Catalog
	if cfg.Vault.Root != "" {
		if err := s.openVault(); err != nil {
			s.tracer.Close()
			return nil, err
		}
		catalog = s.index
	}
	s.presenter = presenter.New(manager, catalog, logger.Logger)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(s.tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.CORSOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		rl.Skip = middleware.SkipPaths("/stream", "/metrics")
		router.Use(middleware.RateLimit(rl))
	}

	handlers.NewHandlers(manager, s.presenter, store, logger.Logger).
		WithMetrics(metrics).
		Register(router)

	wsHandler := ws.NewHandler(manager, s.presenter, c, logger.Logger).
		WithMetrics(metrics).
		WithTracer(s.tracer)
	if s.index != nil {
		wsHandler.WithLocator(s.index)
	}
	router.GET("/stream", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	s.router = router
	logger.Info("Server initialized successfully")
	return s, nil
}

func openSettings(path string, logger *logging.Logger) (*settings.Store, error) {
	if path == "" {
		logger.Info("No settings file configured, keeping settings in memory")
		return settings.NewMemoryStore(settings.Default()), nil
	}
	store, err := settings.Open(path, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	return store, nil
}

func (s *Server) openVault() error {
	index, err := vault.NewIndex(s.config.Vault.Root, s.config.Vault.Include, s.logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	if err := index.Refresh(context.Background()); err != nil {
		return err
	}
	s.index = index

	if !s.config.Vault.Watch {
		return nil
	}
	watcher, err := vault.NewWatcher(index, NewVaultEvents(s.manager), vault.DefaultPairWindow, s.logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to watch vault: %w", err)
	}
	s.watcher = watcher
	return nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Manager returns the opened-files registry
func (s *Server) Manager() *registry.Manager {
	return s.manager
}

// Run serves HTTP and watches the vault until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.watcher != nil {
		g.Go(func() error {
			s.logger.Info("Watching vault", zap.String("root", s.index.Root()))
			return s.watcher.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases resources
func (s *Server) Close() error {
	var err error
	if s.watcher != nil {
		if werr := s.watcher.Close(); werr != nil {
			s.logger.Error("Failed to close vault watcher", zap.Error(werr))
			err = fmt.Errorf("failed to close vault watcher: %w", werr)
		}
	}

	s.tracer.Close()

	// Sync logger before exit
	s.logger.Sync()
	return err
}
