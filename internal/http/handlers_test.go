package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/domain/presenter"
	"github.com/GriffinCanCode/openedfiles/internal/domain/registry"
	"github.com/GriffinCanCode/openedfiles/internal/domain/settings"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/openedfiles/internal/shared/id"
	"github.com/GriffinCanCode/openedfiles/internal/shared/types"
	"github.com/GriffinCanCode/openedfiles/internal/shared/utils"
)

type testHost struct {
	active  string
	missing map[string]bool
	opened  []string
	closed  []string
	notices []string
}

func (h *testHost) VisibleSurfaces() []registry.VisibleSurface { return nil }
func (h *testHost) ActiveSurface() codec.Surface               { return nil }
func (h *testHost) ActiveDocument() string                     { return h.active }
func (h *testHost) DocumentExists(path string) bool            { return !h.missing[path] }
func (h *testHost) CloseActivePane() error                     { return nil }
func (h *testHost) Notice(msg string)                          { h.notices = append(h.notices, msg) }
func (h *testHost) OpenPane(path string, _ bool) error {
	h.opened = append(h.opened, path)
	return nil
}
func (h *testHost) ClosePanes(path string) (int, error) {
	h.closed = append(h.closed, path)
	return 1, nil
}

type env struct {
	router  *gin.Engine
	manager *registry.Manager
	host    *testHost
	store   *settings.Store
}

func setup(t *testing.T, store *settings.Store) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	if store == nil {
		store = settings.NewMemoryStore(settings.Default())
	}
	host := &testHost{missing: make(map[string]bool)}
	manager := registry.NewManager(host, nil, logger).WithLimits(store)
	p := presenter.New(manager, nil, logger)

	router := gin.New()
	NewHandlers(manager, p, store, logger).
		WithMetrics(monitoring.NewMetrics(prometheus.NewRegistry())).
		Register(router)

	return &env{router: router, manager: manager, host: host, store: store}
}

func (e *env) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		data, err := sonic.Marshal(body)
		require.NoError(t, err)
		buf.Write(data)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), v))
}

func TestRootAndHealth(t *testing.T) {
	e := setup(t, nil)

	w := e.do(t, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), Version)

	e.manager.HandleFileOpen("a.md")
	w = e.do(t, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status  string      `json:"status"`
		Tracker types.Stats `json:"tracker"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.Tracker.TrackedDocuments)
}

func TestListDocuments(t *testing.T) {
	e := setup(t, nil)
	e.manager.HandleFileOpen("notes/a.md")
	e.manager.HandleFileOpen("b.md")
	e.host.active = "notes/a.md"

	w := e.do(t, "GET", "/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items     []types.DocumentItem `json:"items"`
		Documents []types.DocumentInfo `json:"documents"`
	}
	decode(t, w, &resp)
	assert.Equal(t, []types.DocumentItem{
		{DisplayName: "b", Path: "b.md"},
		{DisplayName: "a", Path: "notes/a.md", Active: true},
	}, resp.Items)
	require.Len(t, resp.Documents, 2)
	assert.Equal(t, "md", resp.Documents[1].Extension)
}

func TestGetSnapshot(t *testing.T) {
	e := setup(t, nil)

	handle := id.NewSurfaceID()
	e.manager.RegisterSurface(handle)
	e.manager.HandleFileOpen("a.md")

	assert.Equal(t, http.StatusNoContent, e.do(t, "GET", "/documents/snapshot?path=a.md", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, "GET", "/documents/snapshot?path=b.md", nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, "GET", "/documents/snapshot?path=../x.md", nil).Code)

	e.manager.UnregisterSurface(handle, &codec.Snapshot{Selection: "4:9", ScrollTop: 12})

	w := e.do(t, "GET", "/documents/snapshot?path=a.md", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap, err := codec.Decode(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, codec.Snapshot{Selection: "4:9", ScrollTop: 12}, snap)
}

func TestOpenDocument(t *testing.T) {
	e := setup(t, nil)
	e.manager.HandleFileOpen("a.md")
	e.manager.HandleFileOpen("gone.md")
	e.host.missing["gone.md"] = true

	w := e.do(t, "POST", "/documents/open", types.OpenRequest{Path: "a.md", Split: true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a.md"}, e.host.opened)

	w = e.do(t, "POST", "/documents/open", types.OpenRequest{Path: "gone.md"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{registry.NoticeNotFound}, e.host.notices)
	_, tracked := e.manager.Get("gone.md")
	assert.False(t, tracked)

	assert.Equal(t, http.StatusBadRequest, e.do(t, "POST", "/documents/open", gin.H{}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, "POST", "/documents/open", types.OpenRequest{Path: "/abs.md"}).Code)
}

func TestOpenWithoutHost(t *testing.T) {
	e := setup(t, nil)
	e.manager.HandleFileOpen("a.md")
	e.manager.ReleaseHost(e.host)

	w := e.do(t, "POST", "/documents/open", types.OpenRequest{Path: "a.md"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCloseDocument(t *testing.T) {
	e := setup(t, nil)
	e.manager.HandleFileOpen("a.md")

	w := e.do(t, "POST", "/documents/close", types.CloseRequest{Path: "a.md"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, e.manager.Documents())

	w = e.do(t, "POST", "/documents/close", types.CloseRequest{Path: "a.md"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"a.md", "a.md"}, e.host.closed)
}

func TestCloseActive(t *testing.T) {
	e := setup(t, nil)

	assert.Equal(t, http.StatusConflict, e.do(t, "POST", "/documents/close-active", nil).Code)

	e.manager.HandleFileOpen("a.md")
	e.host.active = "a.md"
	assert.Equal(t, http.StatusOK, e.do(t, "POST", "/documents/close-active", nil).Code)
	assert.Empty(t, e.manager.Documents())
}

func TestClearDocuments(t *testing.T) {
	e := setup(t, nil)
	e.manager.HandleFileOpen("a.md")
	e.manager.HandleFileOpen("b.md")

	w := e.do(t, "POST", "/documents/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Cleared int `json:"cleared"`
	}
	decode(t, w, &resp)
	assert.Equal(t, 2, resp.Cleared)
	assert.Empty(t, e.manager.Documents())
}

func TestSwitcher(t *testing.T) {
	e := setup(t, nil)
	e.manager.HandleFileOpen("notes/alpha.md")
	e.manager.HandleFileOpen("notes/beta.md")

	w := e.do(t, "GET", "/switcher?q=alpa&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Suggestions []types.Suggestion `json:"suggestions"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "notes/alpha.md", resp.Suggestions[0].Path)
	assert.True(t, resp.Suggestions[0].Open)

	assert.Equal(t, http.StatusBadRequest, e.do(t, "GET", "/switcher?q=a&limit=many", nil).Code)
}

func TestSwitcherMarks(t *testing.T) {
	e := setup(t, nil)
	e.manager.HandleFileOpen("notes/alpha.md")

	w := e.do(t, "POST", "/switcher/marks", types.MarksRequest{Names: []string{"notes/alpha", "notes/beta"}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Marks map[string]bool `json:"marks"`
	}
	decode(t, w, &resp)
	assert.Equal(t, map[string]bool{"notes/alpha": true, "notes/beta": false}, resp.Marks)

	assert.Equal(t, http.StatusBadRequest, e.do(t, "POST", "/switcher/marks", gin.H{}).Code)
	tooMany := make([]string, utils.MaxMarkNames+1)
	assert.Equal(t, http.StatusBadRequest, e.do(t, "POST", "/switcher/marks", types.MarksRequest{Names: tooMany}).Code)
}

func TestSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	store, err := settings.Open(path, nil)
	require.NoError(t, err)
	e := setup(t, store)

	w := e.do(t, "GET", "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.SettingsResponse
	decode(t, w, &resp)
	assert.Equal(t, types.SettingsResponse{KeepMaxOpenFiles: 0, Path: path}, resp)

	w = e.do(t, "PUT", "/settings", types.SettingsRequest{KeepMaxOpenFiles: " 2 "})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, 2, resp.KeepMaxOpenFiles)

	w = e.do(t, "PUT", "/settings", types.SettingsRequest{KeepMaxOpenFiles: "lots"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 2, e.store.MaxOpen())

	reopened, err := settings.Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.MaxOpen())

	// The limit applies on the next open event.
	for _, p := range []string{"a.md", "b.md", "c.md"} {
		e.manager.HandleFileOpen(p)
	}
	assert.Len(t, e.manager.Documents(), 2)
}
