package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/openedfiles/internal/shared/id"
	"github.com/GriffinCanCode/openedfiles/internal/shared/types"
)

// NoticeNotFound is shown when a document picked from the list is gone.
const NoticeNotFound = "Cannot find a file with that name"

// Restore outcomes
const (
	RestoreOK      = "ok"
	RestorePartial = "partial"
	RestoreSkipped = "skipped"
)

// Manager owns the opened-files list
type Manager struct {
	mu        sync.Mutex
	docs      []*Document  // Protected by mu, most recent first
	pending   id.SurfaceID // Protected by mu
	host      Host         // Protected by mu
	lastStamp time.Time    // Protected by mu

	restoring atomic.Bool

	codec   *codec.Codec
	limits  LimitSource
	now     func() time.Time
	logger  *zap.Logger
	metrics *monitoring.Metrics

	listenersMu  sync.Mutex
	listeners    map[int]func()
	nextListener int
}

// NewManager creates a new registry manager. host may be nil until a host
// connects.
func NewManager(host Host, c *codec.Codec, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		host:      host,
		codec:     c,
		limits:    FixedLimit(0),
		now:       time.Now,
		logger:    logger.Named("registry"),
		listeners: make(map[int]func()),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithLimits sets the max-open source consulted after every open event
func (m *Manager) WithLimits(limits LimitSource) *Manager {
	if limits != nil {
		m.limits = limits
	}
	return m
}

// WithClock replaces the clock used for LastOpenedAt
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// SetHost attaches the host
func (m *Manager) SetHost(host Host) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.host = host
}

// ReleaseHost detaches host if it is the current one
func (m *Manager) ReleaseHost(host Host) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.host != host {
		return false
	}
	m.host = nil
	return true
}

func (m *Manager) currentHost() Host {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.host
}

// HandleFileOpen processes a host document-opened event. An empty path
// means no document is focused; only the garbage collection runs then.
func (m *Manager) HandleFileOpen(path string) {
	timer := monitoring.NewTimer(m.metrics, "registry", "file_open")
	defer timer.Stop()

	if path != "" {
		m.DocumentOpened(path, MetadataFor(path))
	}

	m.Sweep()
	m.EnforceMaxOpen(m.limits.MaxOpen())
	m.changed()
}

// DocumentOpened records that path was opened or refocused.
//
// A known document is moved forward in time. If it has no live surface it
// claims the pending handle and, when a snapshot is stored, the snapshot is
// restored onto the host's active surface and then cleared. A known
// document that still has a live surface is a focus-only event. An unknown
// document is inserted at the front and claims the pending handle.
func (m *Manager) DocumentOpened(path string, meta Metadata) {
	if path == "" {
		return
	}

	m.mu.Lock()
	stamp := m.stamp()

	doc := m.find(path)
	if doc == nil {
		doc = &Document{
			Path:         path,
			DisplayName:  meta.DisplayName,
			Extension:    meta.Extension,
			LastOpenedAt: stamp,
			LiveHandle:   m.pending,
		}
		m.pending = ""
		m.docs = append([]*Document{doc}, m.docs...)
		m.mu.Unlock()

		m.logger.Debug("tracking new document",
			zap.String("path", path),
			zap.String("handle", doc.LiveHandle.String()))
		return
	}

	doc.LastOpenedAt = stamp
	if doc.Live() {
		m.mu.Unlock()
		m.logger.Debug("focus only, surface still live", zap.String("path", path))
		return
	}

	doc.LiveHandle = m.pending
	m.pending = ""
	snap := doc.Snapshot
	host := m.host
	m.mu.Unlock()

	if snap == nil {
		m.logger.Debug("no editing state to restore", zap.String("path", path))
		return
	}

	if m.restore(path, *snap, host) {
		m.consume(path, snap)
	}
}

// restore replays snap onto the host's active surface. It reports whether
// the snapshot was consumed.
func (m *Manager) restore(path string, snap codec.Snapshot, host Host) bool {
	if m.codec == nil || host == nil {
		m.metrics.RecordRestore(RestoreSkipped)
		return false
	}

	target := host.ActiveSurface()
	if target == nil {
		m.logger.Warn("no active surface to restore into, keeping snapshot",
			zap.String("path", path))
		m.metrics.RecordRestore(RestoreSkipped)
		return false
	}

	if !m.restoring.CompareAndSwap(false, true) {
		m.logger.Debug("restore already in progress", zap.String("path", path))
		m.metrics.RecordRestore(RestoreSkipped)
		return false
	}
	defer m.restoring.Store(false)

	timer := monitoring.NewTimer(m.metrics, "registry", "restore")
	err := m.codec.Restore(snap, target)
	timer.Stop()

	if err != nil {
		m.logger.Warn("partially restored editing state",
			zap.String("path", path),
			zap.Error(err))
		m.metrics.RecordRestore(RestorePartial)
		return true
	}

	m.logger.Debug("restored editing state", zap.String("path", path))
	m.metrics.RecordRestore(RestoreOK)
	return true
}

// consume clears the snapshot of path if it is still the one restored
func (m *Manager) consume(path string, snap *codec.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc := m.find(path); doc != nil && doc.Snapshot == snap {
		doc.Snapshot = nil
	}
}

// Restoring reports whether a restore is in progress
func (m *Manager) Restoring() bool {
	return m.restoring.Load()
}

// RegisterSurface holds handle as the pending surface until a document
// claims it. Ignored while restoring.
func (m *Manager) RegisterSurface(handle id.SurfaceID) {
	if m.restoring.Load() {
		m.logger.Debug("ignoring surface registration during restore",
			zap.String("handle", handle.String()))
		return
	}

	m.mu.Lock()
	replaced := m.pending
	m.pending = handle
	m.mu.Unlock()

	if !replaced.IsZero() {
		m.logger.Debug("pending surface replaced before being claimed",
			zap.String("dropped", replaced.String()),
			zap.String("handle", handle.String()))
	}
	m.publish()
}

// UnregisterSurface records that the surface behind handle died, storing
// its snapshot on the document that owned it. A handle no document owns is
// dropped from the pending slot. Ignored while restoring.
func (m *Manager) UnregisterSurface(handle id.SurfaceID, snap *codec.Snapshot) {
	if m.restoring.Load() {
		m.logger.Debug("ignoring surface teardown during restore",
			zap.String("handle", handle.String()))
		return
	}
	if handle.IsZero() {
		return
	}

	m.mu.Lock()
	var owner string
	for _, doc := range m.docs {
		if doc.LiveHandle == handle {
			doc.LiveHandle = ""
			doc.Snapshot = snap
			owner = doc.Path
			break
		}
	}
	if owner == "" && m.pending == handle {
		m.pending = ""
	}
	m.mu.Unlock()

	if owner != "" {
		m.logger.Debug("stored editing state",
			zap.String("path", owner),
			zap.Bool("snapshot", snap != nil))
	}
	m.publish()
}

// Close removes path from the list and asks the host to close its panes.
func (m *Manager) Close(path string) error {
	removed := m.remove(path)

	if host := m.currentHost(); host != nil {
		n, err := host.ClosePanes(path)
		if err != nil {
			m.logger.Warn("failed to close panes", zap.String("path", path), zap.Error(err))
		} else {
			m.logger.Debug("closed panes", zap.String("path", path), zap.Int("count", n))
		}
	}

	if !removed {
		return fmt.Errorf("close %s: %w", path, ErrNotTracked)
	}
	m.changed()
	return nil
}

// CanCloseActive reports whether the focused document is tracked
func (m *Manager) CanCloseActive() bool {
	host := m.currentHost()
	if host == nil {
		return false
	}
	active := host.ActiveDocument()
	if active == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(active) != nil
}

// CloseActive removes the focused document from the list and closes the
// focused pane.
func (m *Manager) CloseActive() error {
	host := m.currentHost()
	if host == nil {
		return ErrNoHost
	}
	active := host.ActiveDocument()
	if active == "" {
		return ErrNoActiveDocument
	}
	if !m.remove(active) {
		return fmt.Errorf("close active %s: %w", active, ErrNotTracked)
	}

	if err := host.CloseActivePane(); err != nil {
		m.logger.Warn("failed to close active pane", zap.String("path", active), zap.Error(err))
	}
	m.changed()
	return nil
}

// Open asks the host to show a tracked document. A document the host can
// no longer locate is dropped from the list after a notice.
func (m *Manager) Open(path string, split bool) error {
	host := m.currentHost()
	if host == nil {
		return ErrNoHost
	}

	if !host.DocumentExists(path) {
		host.Notice(NoticeNotFound)
		if m.remove(path) {
			m.changed()
		}
		return fmt.Errorf("open %s: %w", path, ErrDocumentNotFound)
	}

	if err := host.OpenPane(path, split); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}

// Rename updates identity and display fields in place. Position, handle
// and snapshot are kept. An entry already tracked under newPath is dropped.
func (m *Manager) Rename(oldPath, newPath string, meta Metadata) error {
	m.mu.Lock()
	doc := m.find(oldPath)
	if doc == nil {
		m.mu.Unlock()
		return fmt.Errorf("rename %s: %w", oldPath, ErrNotTracked)
	}

	if oldPath != newPath {
		if clash := m.find(newPath); clash != nil {
			m.removeLocked(newPath)
			m.logger.Debug("rename replaced tracked document", zap.String("path", newPath))
		}
	}

	doc.Path = newPath
	doc.DisplayName = meta.DisplayName
	doc.Extension = meta.Extension
	m.mu.Unlock()

	m.logger.Debug("renamed document",
		zap.String("from", oldPath),
		zap.String("to", newPath))
	m.changed()
	return nil
}

// Delete removes path from the list
func (m *Manager) Delete(path string) bool {
	if !m.remove(path) {
		return false
	}
	m.logger.Debug("deleted document", zap.String("path", path))
	m.changed()
	return true
}

// Clear empties the list
func (m *Manager) Clear() int {
	m.mu.Lock()
	n := len(m.docs)
	m.docs = nil
	m.mu.Unlock()

	m.logger.Debug("cleared opened files", zap.Int("count", n))
	m.changed()
	return n
}

// Gather adopts the documents the host already shows, linking their
// surface handles. Used once a host connects.
func (m *Manager) Gather() int {
	host := m.currentHost()
	if host == nil {
		return 0
	}
	visible := host.VisibleSurfaces()

	m.mu.Lock()
	added := 0
	for _, vs := range visible {
		if vs.Path == "" {
			continue
		}
		if doc := m.find(vs.Path); doc != nil {
			if !doc.Live() && !m.ownedLocked(vs.Handle) {
				doc.LiveHandle = vs.Handle
			}
			continue
		}

		handle := vs.Handle
		if m.ownedLocked(handle) {
			handle = ""
		}
		meta := MetadataFor(vs.Path)
		m.docs = append([]*Document{{
			Path:         vs.Path,
			DisplayName:  meta.DisplayName,
			Extension:    meta.Extension,
			LastOpenedAt: m.stamp(),
			LiveHandle:   handle,
		}}, m.docs...)
		if !handle.IsZero() && m.pending == handle {
			m.pending = ""
		}
		added++
	}
	m.mu.Unlock()

	m.logger.Info("gathered already opened documents", zap.Int("count", added))
	m.changed()
	return added
}

// Documents returns a copy of the list, most recent first
func (m *Manager) Documents() []Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := make([]Document, len(m.docs))
	for i, doc := range m.docs {
		docs[i] = doc.copy()
	}
	return docs
}

// Get returns a copy of the document tracked under path
func (m *Manager) Get(path string) (Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.find(path)
	if doc == nil {
		return Document{}, false
	}
	return doc.copy(), true
}

// Pending returns the unclaimed surface handle, if any
func (m *Manager) Pending() id.SurfaceID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// ActiveDocument returns the host's focused document path
func (m *Manager) ActiveDocument() string {
	if host := m.currentHost(); host != nil {
		return host.ActiveDocument()
	}
	return ""
}

// Stats returns manager statistics
func (m *Manager) Stats() types.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := types.Stats{
		TrackedDocuments: len(m.docs),
		Restoring:        m.restoring.Load(),
		MaxOpen:          m.limits.MaxOpen(),
	}
	for _, doc := range m.docs {
		if doc.Live() {
			stats.LiveSurfaces++
		}
		if doc.Snapshot != nil {
			stats.Snapshots++
		}
	}
	if !m.pending.IsZero() {
		pending := m.pending.String()
		stats.PendingSurface = &pending
	}
	return stats
}

// Subscribe registers fn to run after every list change. The returned
// function unsubscribes.
func (m *Manager) Subscribe(fn func()) func() {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	key := m.nextListener
	m.nextListener++
	m.listeners[key] = fn

	return func() {
		m.listenersMu.Lock()
		defer m.listenersMu.Unlock()
		delete(m.listeners, key)
	}
}

func (m *Manager) changed() {
	m.publish()

	m.listenersMu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (m *Manager) publish() {
	if m.metrics == nil {
		return
	}
	stats := m.Stats()
	m.metrics.SetTracker(stats.TrackedDocuments, stats.LiveSurfaces, stats.Snapshots, stats.PendingSurface != nil)
}

// stamp returns a strictly increasing timestamp (must hold lock)
func (m *Manager) stamp() time.Time {
	now := m.now()
	if !now.After(m.lastStamp) {
		now = m.lastStamp.Add(time.Nanosecond)
	}
	m.lastStamp = now
	return now
}

// find returns the document tracked under path (must hold lock)
func (m *Manager) find(path string) *Document {
	for _, doc := range m.docs {
		if doc.Path == path {
			return doc
		}
	}
	return nil
}

// ownedLocked reports whether a document holds handle (must hold lock)
func (m *Manager) ownedLocked(handle id.SurfaceID) bool {
	if handle.IsZero() {
		return false
	}
	for _, doc := range m.docs {
		if doc.LiveHandle == handle {
			return true
		}
	}
	return false
}

func (m *Manager) remove(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(path)
}

// removeLocked drops path from the list (must hold lock)
func (m *Manager) removeLocked(path string) bool {
	for i, doc := range m.docs {
		if doc.Path == path {
			m.docs = append(m.docs[:i:i], m.docs[i+1:]...)
			return true
		}
	}
	return false
}
