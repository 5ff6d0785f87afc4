package registry

import (
	"slices"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/openedfiles/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/openedfiles/internal/shared/id"
)

// Sweep reconciles live handles against the surfaces the host shows right
// now. Documents with no visible surface lose their live handle; documents
// that are visible without one adopt the reported handle. The host is
// queried afresh on every call. Returns the number of handles cleared.
func (m *Manager) Sweep() int {
	host := m.currentHost()
	if host == nil {
		return 0
	}

	timer := monitoring.NewTimer(m.metrics, "registry", "sweep")
	defer timer.Stop()

	visible := make(map[string][]id.SurfaceID)
	for _, vs := range host.VisibleSurfaces() {
		visible[vs.Path] = append(visible[vs.Path], vs.Handle)
	}

	m.mu.Lock()
	var cleared, linked int
	for _, doc := range m.docs {
		if _, shown := visible[doc.Path]; shown || !doc.Live() {
			continue
		}
		m.logger.Debug("removing stale surface handle",
			zap.String("path", doc.Path),
			zap.String("handle", doc.LiveHandle.String()))
		doc.LiveHandle = ""
		cleared++
	}

	// Link only after every stale handle is released, so a surface that
	// switched documents can move to the one it shows now.
	for _, doc := range m.docs {
		if doc.Live() {
			continue
		}
		for _, handle := range visible[doc.Path] {
			if handle.IsZero() || m.ownedLocked(handle) {
				continue
			}
			doc.LiveHandle = handle
			if m.pending == handle {
				m.pending = ""
			}
			linked++
			break
		}
	}

	var live int
	for _, doc := range m.docs {
		if doc.Live() {
			live++
		}
	}
	total := len(m.docs)
	m.mu.Unlock()

	m.logger.Debug("swept opened files",
		zap.Int("documents", total),
		zap.Int("live", live),
		zap.Int("cleared", cleared),
		zap.Int("linked", linked))
	m.metrics.AddSweptHandles(cleared)
	return cleared
}

// EnforceMaxOpen keeps at most limit documents. When the list is longer it
// is stably sorted by LastOpenedAt, newest first, and the tail is evicted
// together with its snapshots. limit <= 0 means unlimited. Returns the
// evicted documents.
func (m *Manager) EnforceMaxOpen(limit int) []Document {
	if limit <= 0 {
		return nil
	}

	m.mu.Lock()
	if len(m.docs) <= limit {
		m.mu.Unlock()
		return nil
	}

	slices.SortStableFunc(m.docs, func(a, b *Document) int {
		return b.LastOpenedAt.Compare(a.LastOpenedAt)
	})

	evicted := make([]Document, 0, len(m.docs)-limit)
	for _, doc := range m.docs[limit:] {
		evicted = append(evicted, doc.copy())
	}
	m.docs = slices.Clone(m.docs[:limit])
	m.mu.Unlock()

	m.logger.Debug("closing files to keep under limit",
		zap.Int("limit", limit),
		zap.Int("evicted", len(evicted)))
	m.metrics.AddEvictions(len(evicted))
	return evicted
}
