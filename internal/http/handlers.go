package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/domain/presenter"
	"github.com/GriffinCanCode/openedfiles/internal/domain/registry"
	"github.com/GriffinCanCode/openedfiles/internal/domain/settings"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/openedfiles/internal/shared/types"
	"github.com/GriffinCanCode/openedfiles/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	manager   *registry.Manager
	presenter *presenter.Presenter
	settings  *settings.Store
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	manager *registry.Manager,
	p *presenter.Presenter,
	store *settings.Store,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		manager:   manager,
		presenter: p,
		settings:  store,
		logger:    logger.Named("http"),
	}
}

// WithMetrics adds metrics to the health report
func (h *Handlers) WithMetrics(metrics *monitoring.Metrics) *Handlers {
	h.metrics = metrics
	return h
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Opened Files Tracker",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"tracker": h.manager.Stats(),
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Summary()
	}
	c.JSON(http.StatusOK, resp)
}

// ListDocuments lists the opened files, most recent first
func (h *Handlers) ListDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":     h.presenter.Items(),
		"documents": h.presenter.Documents(),
		"stats":     h.manager.Stats(),
	})
}

// GetSnapshot returns the stored editing state of a document
func (h *Handlers) GetSnapshot(c *gin.Context) {
	path := c.Query("path")
	if err := utils.ValidateDocumentPath(path); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, ok := h.manager.Get(path)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": registry.ErrNotTracked.Error()})
		return
	}
	if doc.Snapshot == nil {
		c.Status(http.StatusNoContent)
		return
	}

	data, err := codec.Encode(*doc.Snapshot)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// OpenDocument shows a document picked from the list
func (h *Handlers) OpenDocument(c *gin.Context) {
	var req types.OpenRequest
	if !bind(c, &req) {
		return
	}
	if err := utils.ValidateDocumentPath(req.Path); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.presenter.Open(req.Path, req.Split); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": req.Path})
}

// CloseDocument closes one document from its close button
func (h *Handlers) CloseDocument(c *gin.Context) {
	var req types.CloseRequest
	if !bind(c, &req) {
		return
	}
	if err := utils.ValidateDocumentPath(req.Path); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.presenter.CloseOne(req.Path); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": req.Path})
}

// CloseActive closes the focused document
func (h *Handlers) CloseActive(c *gin.Context) {
	if !h.manager.CanCloseActive() {
		c.JSON(http.StatusConflict, gin.H{"error": "no tracked document is focused"})
		return
	}
	if err := h.manager.CloseActive(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearDocuments empties the list
func (h *Handlers) ClearDocuments(c *gin.Context) {
	n := h.presenter.ClearAll()
	c.JSON(http.StatusOK, gin.H{"success": true, "cleared": n})
}

// Switcher ranks documents for a quick-switcher query
func (h *Handlers) Switcher(c *gin.Context) {
	query := c.Query("q")
	if err := utils.ValidateQuery(query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"suggestions": h.presenter.Suggest(query, utils.ClampLimit(limit)),
	})
}

// SwitcherMarks reports which of the host's own switcher entries are open
func (h *Handlers) SwitcherMarks(c *gin.Context) {
	var req types.MarksRequest
	if !bind(c, &req) {
		return
	}
	if len(req.Names) > utils.MaxMarkNames {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d names", utils.MaxMarkNames)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"marks": h.presenter.OpenMarks(req.Names)})
}

// GetSettings returns the persisted settings
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settingsResponse())
}

// UpdateSettings stores a new max-open-files value. Text that is not an
// integer is rejected and leaves the setting unchanged.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req types.SettingsRequest
	if !bind(c, &req) {
		return
	}

	if err := h.settings.SetMaxOpenText(req.KeepMaxOpenFiles); err != nil {
		if errors.Is(err, settings.ErrInvalidValue) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed to save settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.settingsResponse())
}

func (h *Handlers) settingsResponse() types.SettingsResponse {
	return types.SettingsResponse{
		KeepMaxOpenFiles: h.settings.MaxOpen(),
		Path:             h.settings.Path(),
	}
}

// fail maps registry errors to status codes
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, registry.ErrNotTracked), errors.Is(err, registry.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, registry.ErrNoHost):
		status = http.StatusServiceUnavailable
	case errors.Is(err, registry.ErrNoActiveDocument):
		status = http.StatusConflict
	default:
		h.logger.Warn("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
