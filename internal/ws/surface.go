package ws

import (
	"sync"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
	"github.com/GriffinCanCode/openedfiles/internal/shared/types"
)

// RemoteSurface is an editing surface living in the connected host.
//
// Reads answer from the last state the host reported. Writes accumulate
// into a restore command that is sent when the selection is revealed,
// which is always the last step of a restore.
type RemoteSurface struct {
	key  string
	send func(types.ServerMessage) error

	mu      sync.Mutex
	state   types.SurfaceState    // Protected by mu
	restore *types.RestorePayload // Protected by mu
}

// NewRemoteSurface wraps a host surface. The returned surface exposes the
// history capability the host advertised in state.HistoryAPI.
func NewRemoteSurface(key string, state types.SurfaceState, send func(types.ServerMessage) error) (*RemoteSurface, codec.Surface) {
	rs := &RemoteSurface{key: key, send: send, state: state}
	switch state.HistoryAPI {
	case types.HistoryAPILoad:
		return rs, loadingSurface{rs}
	case types.HistoryAPIReplace:
		return rs, replacingSurface{rs}
	default:
		return rs, rs
	}
}

// Key returns the host's surface key
func (rs *RemoteSurface) Key() string {
	return rs.key
}

// Update replaces the reported state, keeping the advertised history API
// when the update omits it.
func (rs *RemoteSurface) Update(state types.SurfaceState) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if state.HistoryAPI == "" {
		state.HistoryAPI = rs.state.HistoryAPI
	}
	rs.state = state
}

// State returns the last reported state
func (rs *RemoteSurface) State() types.SurfaceState {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.state
}

func (rs *RemoteSurface) Selection() ([]byte, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return []byte(rs.state.Selection), nil
}

func (rs *RemoteSurface) SetSelection(data []byte) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	sel := string(data)
	rs.state.Selection = sel
	rs.pendingLocked().Selection = &sel
	return nil
}

func (rs *RemoteSurface) History() ([]byte, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.state.History == "" {
		return nil, nil
	}
	return []byte(rs.state.History), nil
}

func (rs *RemoteSurface) ScrollTop() float64 {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.state.ScrollTop
}

func (rs *RemoteSurface) SetScrollTop(offset float64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.state.ScrollTop = offset
	rs.pendingLocked().ScrollTop = &offset
}

// RevealSelection sends the accumulated restore command to the host
func (rs *RemoteSurface) RevealSelection() {
	rs.mu.Lock()
	payload := rs.pendingLocked()
	payload.Reveal = true
	rs.restore = nil
	rs.mu.Unlock()

	if rs.send == nil {
		return
	}
	_ = rs.send(types.ServerMessage{
		Type:    types.MsgRestore,
		Key:     rs.key,
		Restore: payload,
	})
}

func (rs *RemoteSurface) setHistory(data []byte, unsafe bool) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	history := string(data)
	rs.state.History = history
	p := rs.pendingLocked()
	p.History = &history
	p.Unsafe = unsafe
	return nil
}

// pendingLocked returns the restore command being built (must hold lock)
func (rs *RemoteSurface) pendingLocked() *types.RestorePayload {
	if rs.restore == nil {
		rs.restore = &types.RestorePayload{}
	}
	return rs.restore
}

type loadingSurface struct{ *RemoteSurface }

func (s loadingSurface) LoadHistory(data []byte) error {
	return s.setHistory(data, false)
}

type replacingSurface struct{ *RemoteSurface }

func (s replacingSurface) ReplaceHistoryUnsafe(data []byte) error {
	return s.setHistory(data, true)
}
