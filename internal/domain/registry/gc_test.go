package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/shared/id"
)

func openWithHandle(m *Manager, path string) id.SurfaceID {
	handle := id.NewSurfaceID()
	m.RegisterSurface(handle)
	m.DocumentOpened(path, MetadataFor(path))
	return handle
}

func TestSweepClearsInvisibleHandles(t *testing.T) {
	host := newFakeHost()
	m, _ := newTestManager(t, host)

	ha := openWithHandle(m, "a.md")
	openWithHandle(m, "b.md")
	hc := openWithHandle(m, "c.md")
	m.DocumentOpened("d.md", MetadataFor("d.md"))
	hd := id.NewSurfaceID()

	// b.md's pane was torn down silently; d.md is shown on a surface the
	// registry never linked.
	host.show(nil, "a.md",
		VisibleSurface{"a.md", ha},
		VisibleSurface{"c.md", hc},
		VisibleSurface{"d.md", hd})

	assert.Equal(t, 1, m.Sweep())

	visible := map[string]bool{}
	for _, vs := range host.VisibleSurfaces() {
		visible[vs.Path] = true
	}
	for _, doc := range m.Documents() {
		assert.Equal(t, visible[doc.Path], doc.Live(), doc.Path)
	}

	d, _ := m.Get("d.md")
	assert.Equal(t, hd, d.LiveHandle)
}

func TestSweepKeepsSnapshots(t *testing.T) {
	host := newFakeHost()
	m, _ := newTestManager(t, host)

	handle := openWithHandle(m, "a.md")
	m.UnregisterSurface(handle, &codec.Snapshot{Selection: "s"})

	m.Sweep()

	doc, _ := m.Get("a.md")
	require.NotNil(t, doc.Snapshot)
	assert.Equal(t, "s", doc.Snapshot.Selection)
}

func TestSweepNeverSharesHandle(t *testing.T) {
	host := newFakeHost()
	m, _ := newTestManager(t, host)

	shared := openWithHandle(m, "a.md")
	m.DocumentOpened("b.md", MetadataFor("b.md"))

	host.show(nil, "",
		VisibleSurface{"a.md", shared},
		VisibleSurface{"b.md", shared})
	m.Sweep()

	b, _ := m.Get("b.md")
	assert.False(t, b.Live())
}

func TestSweepAdoptsPendingHandle(t *testing.T) {
	host := newFakeHost()
	m, _ := newTestManager(t, host)

	m.DocumentOpened("a.md", MetadataFor("a.md"))
	pending := id.NewSurfaceID()
	m.RegisterSurface(pending)
	host.show(nil, "a.md", VisibleSurface{"a.md", pending})

	m.Sweep()

	a, _ := m.Get("a.md")
	assert.Equal(t, pending, a.LiveHandle)
	assert.True(t, m.Pending().IsZero())
}

func TestSweepMovesHandleToShownDocument(t *testing.T) {
	host := newFakeHost()
	m, _ := newTestManager(t, host)

	// The pane showing a.md switched to b.md without tearing down.
	handle := openWithHandle(m, "a.md")
	m.DocumentOpened("b.md", MetadataFor("b.md"))
	host.show(nil, "b.md", VisibleSurface{"b.md", handle})

	assert.Equal(t, 1, m.Sweep())

	a, _ := m.Get("a.md")
	b, _ := m.Get("b.md")
	assert.False(t, a.Live())
	assert.Equal(t, handle, b.LiveHandle)

	m.UnregisterSurface(handle, &codec.Snapshot{Selection: "2:2"})
	b, _ = m.Get("b.md")
	require.NotNil(t, b.Snapshot)
	assert.Equal(t, "2:2", b.Snapshot.Selection)
}

func TestSweepWithoutHost(t *testing.T) {
	m, _ := newTestManager(t, nil)
	openWithHandle(m, "a.md")

	assert.Equal(t, 0, m.Sweep())
	a, _ := m.Get("a.md")
	assert.True(t, a.Live())
}

func TestEnforceMaxOpenKeepsMostRecent(t *testing.T) {
	m, _ := newTestManager(t, newFakeHost())
	m.WithLimits(FixedLimit(3))

	for _, p := range []string{"a.md", "b.md", "c.md", "d.md", "b.md", "e.md", "a.md"} {
		m.HandleFileOpen(p)
		assert.LessOrEqual(t, len(m.Documents()), 3)
	}

	assert.Equal(t, []string{"a.md", "e.md", "b.md"}, paths(m.Documents()))
}

func TestEnforceMaxOpenProperty(t *testing.T) {
	for limit := 1; limit <= 5; limit++ {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			m, _ := newTestManager(t, newFakeHost())
			m.WithLimits(FixedLimit(limit))

			opens := []int{0, 1, 2, 3, 1, 4, 5, 0, 6, 2, 7, 7, 3}
			var history []string
			for _, n := range opens {
				p := fmt.Sprintf("doc-%d.md", n)
				m.HandleFileOpen(p)
				history = append(history, p)
			}

			// The most recent distinct paths, newest first.
			var want []string
			seen := map[string]bool{}
			for i := len(history) - 1; i >= 0 && len(want) < limit; i-- {
				if !seen[history[i]] {
					seen[history[i]] = true
					want = append(want, history[i])
				}
			}

			assert.ElementsMatch(t, want, paths(m.Documents()))
		})
	}
}

func TestEnforceMaxOpenUnlimited(t *testing.T) {
	m, _ := newTestManager(t, newFakeHost())
	for i := 0; i < 20; i++ {
		m.HandleFileOpen(fmt.Sprintf("%d.md", i))
	}

	assert.Nil(t, m.EnforceMaxOpen(0))
	assert.Nil(t, m.EnforceMaxOpen(-1))
	assert.Len(t, m.Documents(), 20)
}

func TestEnforceMaxOpenEvictsSnapshots(t *testing.T) {
	m, _ := newTestManager(t, newFakeHost())

	old := openWithHandle(m, "old.md")
	m.UnregisterSurface(old, &codec.Snapshot{Selection: "s"})
	m.DocumentOpened("new.md", MetadataFor("new.md"))

	evicted := m.EnforceMaxOpen(1)
	require.Len(t, evicted, 1)
	assert.Equal(t, "old.md", evicted[0].Path)
	assert.NotNil(t, evicted[0].Snapshot)

	m.DocumentOpened("old.md", MetadataFor("old.md"))
	doc, _ := m.Get("old.md")
	assert.Nil(t, doc.Snapshot)
}

func TestEnforceMaxOpenUnderLimitKeepsOrder(t *testing.T) {
	m, _ := newTestManager(t, newFakeHost())
	m.DocumentOpened("a.md", MetadataFor("a.md"))
	m.DocumentOpened("b.md", MetadataFor("b.md"))
	require.NoError(t, m.Rename("a.md", "z.md", MetadataFor("z.md")))

	assert.Nil(t, m.EnforceMaxOpen(2))
	assert.Equal(t, []string{"b.md", "z.md"}, paths(m.Documents()))
}
