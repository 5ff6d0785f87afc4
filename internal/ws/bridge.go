package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/domain/presenter"
	"github.com/GriffinCanCode/openedfiles/internal/domain/registry"
	"github.com/GriffinCanCode/openedfiles/internal/domain/surface"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/openedfiles/internal/shared/id"
	"github.com/GriffinCanCode/openedfiles/internal/shared/types"
)

const (
	maxMessageSize = 8 << 20
	writeTimeout   = 10 * time.Second
)

// Locator reports whether a document still exists
type Locator interface {
	Exists(path string) bool
}

// Bridge is the registry's view of one connected editor host
type Bridge struct {
	id        id.ConnectionID
	conn      *websocket.Conn
	manager   *registry.Manager
	presenter *presenter.Presenter
	tracker   *surface.Tracker
	locator   Locator
	metrics   *monitoring.Metrics
	tracer    *tracing.Tracer
	logger    *zap.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	surfaces map[string]*RemoteSurface // Protected by mu
	visible  []types.VisibleSurface    // Protected by mu
	active   string                    // Protected by mu, focused surface key
	gathered bool                      // Protected by mu
}

// NewBridge creates a bridge over an established connection
func NewBridge(conn *websocket.Conn, manager *registry.Manager, p *presenter.Presenter, c *codec.Codec, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	connID := id.NewConnectionID()
	b := &Bridge{
		id:        connID,
		conn:      conn,
		manager:   manager,
		presenter: p,
		logger:    logger.Named("bridge").With(zap.String("connection", connID.String())),
		surfaces:  make(map[string]*RemoteSurface),
	}
	b.tracker = surface.NewTracker(manager, c, b.logger)
	return b
}

// WithLocator sets the document existence check
func (b *Bridge) WithLocator(locator Locator) *Bridge {
	b.locator = locator
	return b
}

// WithMetrics adds metrics tracking to the bridge
func (b *Bridge) WithMetrics(metrics *monitoring.Metrics) *Bridge {
	b.metrics = metrics
	b.tracker.WithRecorder(metrics)
	return b
}

// ID returns the connection identifier
func (b *Bridge) ID() id.ConnectionID {
	return b.id
}

// Serve attaches the bridge as the registry host and processes host
// messages until the connection drops or ctx is done.
func (b *Bridge) Serve(ctx context.Context) error {
	b.conn.SetReadLimit(maxMessageSize)

	b.tracker.Install()
	b.manager.SetHost(b)
	unsubscribe := b.presenter.OnChange(b.redraw)
	b.metrics.IncWSConnections()

	defer func() {
		unsubscribe()
		n := b.tracker.DestroyAll()
		b.tracker.Uninstall()
		b.manager.ReleaseHost(b)
		b.metrics.DecWSConnections()
		b.logger.Info("host disconnected", zap.Int("surfaces", n))
	}()

	stop := context.AfterFunc(ctx, func() {
		b.conn.Close()
	})
	defer stop()

	b.logger.Info("host connected")

	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read host message: %w", err)
		}

		var msg types.HostMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			b.logger.Warn("malformed host message", zap.Error(err))
			b.sendError("malformed message")
			continue
		}
		b.handle(msg)
	}
}

// WithTracer opens a span for every host message
func (b *Bridge) WithTracer(tracer *tracing.Tracer) *Bridge {
	b.tracer = tracer
	return b
}

func (b *Bridge) handle(msg types.HostMessage) {
	b.metrics.RecordWSMessage("in", msg.Type)
	b.metrics.RecordHostEvent(msg.Type)

	if b.tracer != nil {
		span, _ := b.tracer.StartSpan(context.Background(), "ws."+msg.Type)
		span.SetTag("connection", b.id.String())
		if msg.Path != "" {
			span.SetTag("path", msg.Path)
		}
		defer func() {
			span.Finish()
			b.tracer.Submit(span)
		}()
	}

	switch msg.Type {
	case types.MsgSurfaceCreated:
		b.surfaceCreated(msg)
	case types.MsgSurfaceDestroyed:
		b.surfaceDestroyed(msg)
	case types.MsgFileOpen:
		if first := b.setLayout(msg.Visible, msg.Active); first {
			b.manager.Gather()
		}
		b.manager.HandleFileOpen(msg.Path)
	case types.MsgVisible:
		if first := b.setLayout(msg.Visible, msg.Active); first {
			b.manager.Gather()
		}
	case types.MsgRename:
		if err := b.manager.Rename(msg.OldPath, msg.NewPath, registry.MetadataFor(msg.NewPath)); err != nil {
			b.logger.Debug("rename of untracked document", zap.String("path", msg.OldPath))
		}
	case types.MsgDelete:
		b.manager.Delete(msg.Path)
	case types.MsgCloseActive:
		if err := b.manager.CloseActive(); err != nil {
			b.sendError(err.Error())
		}
	case types.MsgPing:
		b.send(types.ServerMessage{Type: types.MsgPong})
	default:
		b.sendError("unknown message type")
	}
}

func (b *Bridge) surfaceCreated(msg types.HostMessage) {
	if msg.Key == "" {
		b.sendError("surface key required")
		return
	}

	var state types.SurfaceState
	if msg.State != nil {
		state = *msg.State
	}
	rs, s := NewRemoteSurface(msg.Key, state, b.send)

	b.mu.Lock()
	b.surfaces[msg.Key] = rs
	b.mu.Unlock()

	handle, ok := b.tracker.Created(msg.Key, s)
	if !ok {
		return
	}
	b.send(types.ServerMessage{
		Type:   types.MsgSurfaceBound,
		Key:    msg.Key,
		Handle: handle.String(),
	})
}

func (b *Bridge) surfaceDestroyed(msg types.HostMessage) {
	b.mu.Lock()
	rs := b.surfaces[msg.Key]
	delete(b.surfaces, msg.Key)
	for i, vs := range b.visible {
		if vs.Key == msg.Key {
			b.visible = append(b.visible[:i:i], b.visible[i+1:]...)
			break
		}
	}
	if b.active == msg.Key {
		b.active = ""
	}
	b.mu.Unlock()

	if rs != nil && msg.State != nil {
		rs.Update(*msg.State)
	}
	b.tracker.Destroyed(msg.Key)
}

// setLayout records what the host shows. Reports whether this was the
// first layout of the connection.
func (b *Bridge) setLayout(visible []types.VisibleSurface, active string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible = append([]types.VisibleSurface(nil), visible...)
	b.active = active
	first := !b.gathered
	b.gathered = true
	return first
}

func (b *Bridge) redraw() {
	b.send(types.ServerMessage{
		Type:  types.MsgRedraw,
		Items: b.presenter.Items(),
	})
}

// VisibleSurfaces implements registry.Host
func (b *Bridge) VisibleSurfaces() []registry.VisibleSurface {
	b.mu.Lock()
	visible := append([]types.VisibleSurface(nil), b.visible...)
	b.mu.Unlock()

	result := make([]registry.VisibleSurface, 0, len(visible))
	for _, vs := range visible {
		handle, _ := b.tracker.Handle(vs.Key)
		result = append(result, registry.VisibleSurface{Path: vs.Path, Handle: handle})
	}
	return result
}

// ActiveSurface implements registry.Host
func (b *Bridge) ActiveSurface() codec.Surface {
	b.mu.Lock()
	key := b.active
	b.mu.Unlock()

	if key == "" {
		return nil
	}
	s, ok := b.tracker.Surface(key)
	if !ok {
		return nil
	}
	return s
}

// ActiveDocument implements registry.Host
func (b *Bridge) ActiveDocument() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == "" {
		return ""
	}
	for _, vs := range b.visible {
		if vs.Key == b.active {
			return vs.Path
		}
	}
	return ""
}

// DocumentExists implements registry.Host
func (b *Bridge) DocumentExists(path string) bool {
	if b.locator == nil {
		return true
	}
	return b.locator.Exists(path)
}

// ClosePanes implements registry.Host
func (b *Bridge) ClosePanes(path string) (int, error) {
	b.mu.Lock()
	n := 0
	for _, vs := range b.visible {
		if vs.Path == path {
			n++
		}
	}
	b.mu.Unlock()

	if err := b.send(types.ServerMessage{Type: types.MsgClosePanes, Path: path}); err != nil {
		return 0, err
	}
	return n, nil
}

// CloseActivePane implements registry.Host
func (b *Bridge) CloseActivePane() error {
	b.mu.Lock()
	key := b.active
	b.mu.Unlock()

	if key == "" {
		return errors.New("no focused pane")
	}
	return b.send(types.ServerMessage{Type: types.MsgClosePanes, Key: key})
}

// OpenPane implements registry.Host
func (b *Bridge) OpenPane(path string, split bool) error {
	return b.send(types.ServerMessage{Type: types.MsgOpenPane, Path: path, Split: split})
}

// Notice implements registry.Host
func (b *Bridge) Notice(msg string) {
	b.send(types.ServerMessage{Type: types.MsgNotice, Message: msg})
}

func (b *Bridge) send(msg types.ServerMessage) error {
	msg.Timestamp = time.Now().Unix()
	data, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := b.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		b.logger.Debug("failed to send host message", zap.String("type", msg.Type), zap.Error(err))
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	b.metrics.RecordWSMessage("out", msg.Type)
	return nil
}

func (b *Bridge) sendError(message string) {
	b.send(types.ServerMessage{Type: types.MsgError, Message: message})
}

var _ registry.Host = (*Bridge)(nil)
