package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/domain/presenter"
	"github.com/GriffinCanCode/openedfiles/internal/domain/registry"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/tracing"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // The host runs locally
	},
}

// Handler manages host connections
type Handler struct {
	manager   *registry.Manager
	presenter *presenter.Presenter
	codec     *codec.Codec
	locator   Locator
	metrics   *monitoring.Metrics
	tracer    *tracing.Tracer
	logger    *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(manager *registry.Manager, p *presenter.Presenter, c *codec.Codec, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		manager:   manager,
		presenter: p,
		codec:     c,
		logger:    logger,
	}
}

// WithLocator sets the document existence check handed to every bridge
func (h *Handler) WithLocator(locator Locator) *Handler {
	h.locator = locator
	return h
}

// WithTracer traces every host message
func (h *Handler) WithTracer(tracer *tracing.Tracer) *Handler {
	h.tracer = tracer
	return h
}

// WithMetrics adds metrics tracking to every bridge
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection upgrades the request and serves the host until it
// disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	bridge := NewBridge(conn, h.manager, h.presenter, h.codec, h.logger).
		WithLocator(h.locator).
		WithMetrics(h.metrics).
		WithTracer(h.tracer)

	if err := bridge.Serve(c.Request.Context()); err != nil {
		h.logger.Debug("host connection ended", zap.String("connection", bridge.ID().String()), zap.Error(err))
	}
}
